package trade

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/plantswap/internal/plant"
)

func TestStatusFromCode(t *testing.T) {
	tests := []struct {
		code int
		want Status
	}{
		{0, StatusPending},
		{1, StatusAccepted},
		{2, StatusDeclined},
		{3, StatusUnknown},
		{-1, StatusUnknown},
		{42, StatusUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFromCode(tt.code), "code %d", tt.code)
	}
}

func TestStatus_CanTransition(t *testing.T) {
	all := []Status{StatusPending, StatusAccepted, StatusDeclined, StatusUnknown}
	allowed := map[[2]Status]bool{
		{StatusPending, StatusAccepted}: true,
		{StatusPending, StatusDeclined}: true,
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]Status{from, to}], from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestParseKey(t *testing.T) {
	out, in := uuid.New(), uuid.New()

	key, err := ParseKey(out.String(), in.String())
	require.NoError(t, err)
	assert.Equal(t, Key{Outgoing: out, Incoming: in}, key)
	assert.Equal(t, out.String()+"/"+in.String(), key.Path())

	_, err = ParseKey("nope", in.String())
	assert.Error(t, err)
	_, err = ParseKey(out.String(), "")
	assert.Error(t, err)
}

func TestParseScope(t *testing.T) {
	for in, want := range map[string]Scope{"": ScopeAll, "all": ScopeAll, "incoming": ScopeIncoming, "outgoing": ScopeOutgoing} {
		got, err := ParseScope(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseScope("sideways")
	assert.ErrorIs(t, err, ErrInvalidScope)
}

func TestEnrich_MissingPlantIsOmitted(t *testing.T) {
	out := &plant.Plant{ID: uuid.New(), Name: "Fern"}
	rec := Record{OutgoingPlantID: out.ID, IncomingPlantID: uuid.New(), Status: 1, Message: "hi"}

	e := Enrich(rec, map[uuid.UUID]*plant.Plant{out.ID: out})
	assert.Equal(t, StatusAccepted, e.Status)
	assert.Same(t, out, e.OutgoingPlant)
	assert.Nil(t, e.IncomingPlant)

	b, err := json.Marshal(e)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "accepted", m["status"])
	assert.Contains(t, m, "outgoing_plant")
	assert.NotContains(t, m, "incoming_plant")
}
