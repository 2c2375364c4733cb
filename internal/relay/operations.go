package relay

import "net/http"

// Operations returns the fixed set of relayed k-ID endpoints
func Operations() []Operation {
	return []Operation{
		{
			Name:    "age-gate-check",
			Method:  http.MethodPost,
			Path:    "/age-gate/check",
			Source:  SourceBody,
			RawBody: true,
		},
		{
			Name:            "age-gate-get-requirements",
			Method:          http.MethodGet,
			Path:            "/age-gate/get-requirements",
			Source:          SourceQuery,
			Fields:          []Field{{Name: "jurisdiction", Required: true}},
			RequiredMessage: "Jurisdiction is required",
		},
		{
			Name:   "age-gate-get-default-permissions",
			Method: http.MethodGet,
			Path:   "/age-gate/get-default-permissions",
			Source: SourceQuery,
			Fields: []Field{
				{Name: "jurisdiction", Required: true},
				{Name: "dateOfBirth"},
				{Name: "age"},
			},
			RequiredMessage: "Jurisdiction is required",
			Validate:        ExactlyOneOf("dateOfBirth", "age"),
		},
		{
			Name:   "session-get",
			Method: http.MethodGet,
			Path:   "/session/get",
			Source: SourceQuery,
			Fields: []Field{
				{Name: "sessionId", Required: true},
				{Name: "kuid"},
				{Name: "etag"},
			},
			RequiredMessage: "sessionId is required",
		},
		{
			Name:            "challenge-get",
			Method:          http.MethodGet,
			Path:            "/challenge/get",
			Source:          SourceQuery,
			Fields:          []Field{{Name: "challengeId", Required: true}},
			RequiredMessage: "challengeId is required",
		},
		{
			Name:            "challenge-get-status",
			Method:          http.MethodGet,
			Path:            "/challenge/get-status",
			Source:          SourceQuery,
			Fields:          []Field{{Name: "challengeId", Required: true}},
			RequiredMessage: "challengeId is required",
		},
		{
			Name:   "challenge-send-email",
			Method: http.MethodPost,
			Path:   "/challenge/send-email",
			Source: SourceBody,
			Fields: []Field{
				{Name: "challengeId", Required: true},
				{Name: "email", Required: true},
			},
			RequiredMessage: "challengeId and email are required",
			EmptySuccess:    true,
		},
		{
			Name:   "age-verification-perform-age-appeal",
			Method: http.MethodPost,
			Path:   "/age-verification/perform-age-appeal",
			Source: SourceBody,
			Fields: []Field{
				{Name: "jurisdiction", Required: true},
				{Name: "subject", Required: true},
				{Name: "criteria", Required: true},
			},
			RequiredMessage: "jurisdiction, subject, and criteria are required",
		},
	}
}
