package models

// Role defines what a marketplace user is allowed to do.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// IsValid reports whether the role is known.
func (r Role) IsValid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	default:
		return false
	}
}

// NotificationPreferences allows users to control inquiry emails.
type NotificationPreferences struct {
	Inquiry     bool `bson:"inquiry" json:"inquiry"`
	Appointment bool `bson:"appointment" json:"appointment"`
}

// User is the directory view of a marketplace account.
type User struct {
	ID                      string                   `bson:"_id" json:"id"`
	Name                    string                   `bson:"name" json:"name"`
	Email                   string                   `bson:"email" json:"email"`
	Role                    Role                     `bson:"role" json:"role"`
	NotificationPreferences *NotificationPreferences `bson:"notification_preferences,omitempty" json:"notification_preferences,omitempty"`
}

// WantsEmail reports whether the user accepts emails of the given kind.
// Users without stored preferences receive everything.
func (u *User) WantsEmail(kind InquiryKind) bool {
	if u.NotificationPreferences == nil {
		return true
	}
	if kind == InquiryKindAppointment {
		return u.NotificationPreferences.Appointment
	}
	return u.NotificationPreferences.Inquiry
}
