package entity

// Session identifies who is acting on an operation.
type Session struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

// CanAccessLead reports whether the actor may read or change the lead.
// Sellers only see leads assigned to them.
func (s Session) CanAccessLead(l *Lead) bool {
	return s.IsAdmin() || (s.UserID != "" && l.AssignedUserID == s.UserID)
}
