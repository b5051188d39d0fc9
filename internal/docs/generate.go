package docs

//go:generate swag init --dir ../.. --generalInfo cmd/gateway/main.go --output . --outputTypes go
