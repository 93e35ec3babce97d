package plan

// Plan describes what a subscription tier grants a team.
type Plan struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Members caps the potential member count. 0 means unlimited.
	Members     int             `json:"members"`
	Permissions map[string]bool `json:"permissions"`
}

// Unlimited reports whether the plan has no member ceiling.
func (p Plan) Unlimited() bool {
	return p.Members == 0
}

// Allows reports whether the plan grants the named permission.
func (p Plan) Allows(permission string) bool {
	return p.Permissions[permission]
}
