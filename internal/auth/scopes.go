package auth

// Known OAuth scopes used by the API.
const (
	ScopeActivitiesWrite = "activities:write"
	ScopeActivitiesRead  = "activities:read"
	ScopeMetricsRead     = "metrics:read"
	ScopeProfileWrite    = "profile:write"
)
