package api

import (
	"github.com/ecoledger/credence/internal/config"
	"github.com/ecoledger/credence/pkg/openapi"
)

// buildSpec assembles the OpenAPI document for the service.
func buildSpec(cfg *config.Config) *openapi.Spec {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(map[string]*openapi.Schema{
		"FieldSet": {
			Type:        "object",
			Description: "The nine certificate fields produced by the parser. Unmatched fields are null.",
			Properties: map[string]*openapi.Schema{
				"serial_number": {Description: "Certificate serial number"},
				"project_id":    {Description: "Registry project identifier"},
				"project_name":  {Description: "Project name"},
				"vintage":       {Description: "Credit vintage year"},
				"amount":        {Description: "Retired credit amount, numeric when parseable"},
				"issuance_date": {Description: "Issuance date"},
				"registry":      {Description: "Issuing registry"},
				"category":      {Description: "Project category"},
				"issued_to":     {Description: "Beneficiary"},
			},
		},
		"Verdict": {
			Type:        "object",
			Description: "Registry verification outcome",
			Properties: map[string]*openapi.Schema{
				"verified":       {Type: "boolean"},
				"message":        {Type: "string"},
				"error_category": {Type: "string", Description: "Failure classification when verification could not complete"},
				"details":        {Type: "object", Description: "Registry project details for positive verdicts"},
			},
		},
		"Certificate": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":                {Type: "string", Description: "Certificate UUID"},
				"content_digest":    {Type: "string", Description: "SHA-256 digest of the uploaded bytes"},
				"serial_number":     {Type: "string"},
				"original_filename": {Type: "string"},
				"size_bytes":        {Type: "integer"},
				"page_count":        {Type: "integer"},
				"fields":            openapi.SchemaRef("FieldSet"),
				"verdict":           openapi.SchemaRef("Verdict"),
				"authenticated":     {Type: "boolean"},
				"status":            {Type: "string", Enum: []any{"authenticated", "rejected"}},
				"processed_at":      {Type: "string", Format: "date-time"},
			},
		},
		"AuthenticationResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"certificate":    openapi.SchemaRef("Certificate"),
				"duplicate":      {Type: "boolean"},
				"missing_fields": {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"fabric_tx_id":   {Type: "string", Description: "Placeholder ledger transaction reference"},
				"message":        {Type: "string"},
			},
		},
		"Listing": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":             {Type: "string"},
				"certificate_id": {Type: "string"},
				"price":          {Type: "number"},
				"quantity":       {Type: "number"},
				"status":         {Type: "string", Enum: []any{"active", "sold", "withdrawn"}},
				"description":    {Type: "string"},
				"created_at":     {Type: "string", Format: "date-time"},
				"updated_at":     {Type: "string", Format: "date-time"},
			},
		},
	})

	spec.Paths["/certificates/authenticate"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Authenticate a certificate",
			Description: "Runs the processing pipeline over one uploaded certificate file.",
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Newly processed certificate", "AuthenticationResult"),
				200: openapi.ResponseJSON("Previously processed certificate", "AuthenticationResult"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/certificates/authenticate/batch"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary: "Authenticate multiple certificates",
			Responses: map[int]*openapi.Response{
				200: {Description: "Per-file results"},
			},
		},
	}

	spec.Paths["/certificates"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List certificates",
			Responses: map[int]*openapi.Response{
				200: {Description: "Paginated certificates"},
			},
		},
	}

	spec.Paths["/certificates/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find a certificate",
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Certificate UUID")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Certificate", "Certificate"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Delete: &openapi.Operation{
			Summary:    "Delete a certificate",
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Certificate UUID")},
			Responses: map[int]*openapi.Response{
				204: {Description: "Deleted"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/certificates/digest/{digest}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find a certificate by content digest",
			Parameters: []*openapi.Parameter{openapi.PathParam("digest", "SHA-256 content digest")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Certificate", "Certificate"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/registry/projects/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Verify a project identifier against the registry",
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Registry project identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Verification verdict", "Verdict"),
				404: openapi.ResponseJSON("Project not present in the registry", "Verdict"),
			},
		},
	}

	spec.Paths["/listings"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List marketplace listings",
			Responses: map[int]*openapi.Response{
				200: {Description: "Paginated listings"},
			},
		},
		Post: &openapi.Operation{
			Summary: "Create a listing for an authenticated certificate",
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Created listing", "Listing"),
				422: {Description: "Certificate missing or not authenticated"},
			},
		},
	}

	spec.Paths["/listings/{id}/purchase"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:    "Purchase an active listing",
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Listing UUID")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Sold listing", "Listing"),
				409: openapi.ResponseRef("Conflict"),
			},
		},
	}

	spec.Paths["/listings/{id}/withdraw"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:    "Withdraw an active listing",
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Listing UUID")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Withdrawn listing", "Listing"),
				409: openapi.ResponseRef("Conflict"),
			},
		},
	}

	return spec
}
