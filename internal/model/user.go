package model

// Viewer identifies the user a rule collection is being rendered for.
// Identity comes from the external auth layer; the console never issues
// or validates credentials itself.
type Viewer struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

// CanAdminister reports whether the viewer has administrative rights.
// Every ownership-scoping and menu-visibility decision goes through this
// single predicate instead of checking the role flags ad hoc.
func (v Viewer) CanAdminister() bool {
	return v.IsSuperuser || v.IsStaff
}
