package model

// Permission is the user's consent state for reminder notifications.
type Permission string

const (
	PermissionUnrequested Permission = "unrequested"
	PermissionGranted     Permission = "granted"
	PermissionDenied      Permission = "denied"
)

// IsValid reports whether p is one of the known states.
func (p Permission) IsValid() bool {
	switch p {
	case PermissionUnrequested, PermissionGranted, PermissionDenied:
		return true
	}
	return false
}

// NotifyPermission persists the notification permission state.
type NotifyPermission struct {
	State Permission `json:"state"`
}

// SetKey is a no-op; the permission always lives at KeyNotifyPermission.
func (n *NotifyPermission) SetKey(string) {}

// GetKey returns the database key for the permission.
func (n *NotifyPermission) GetKey() string {
	return KeyNotifyPermission
}
