package openapi

//go:generate go run github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen@v2.1.0 -config oapi-codegen.yaml openapi.yaml
