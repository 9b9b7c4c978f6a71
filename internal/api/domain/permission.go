package domain

import "time"

// Permission names are globally unique strings in the form
// {action}_{resource} or {action}_{resource}_{object_id}.
type Permission struct {
	ID          int64
	Name        string
	Description string
	Resource    string
	ObjectID    *int64 // scopes the permission to one instance when set
	DependsOn   string // prerequisite permission name, resolved by lookup at decision time
	CreatedAt   time.Time
}
