package model

import "sort"

const (
	GroupGuest       = "Guest"
	GroupGeneral     = "General"
	GroupResearchers = "Researchers"
)

// PredefinedGroups are created at startup.
var PredefinedGroups = []string{GroupGuest, GroupGeneral, GroupResearchers}

type Group struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(150);not null;uniqueIndex:uq_groups_name" json:"name"`
}

func (Group) TableName() string { return "groups" }

const (
	PermViewCurve          = "users.view_curve"
	PermAddCurve           = "users.add_curve"
	PermChangeCurve        = "users.change_curve"
	PermDeleteCurve        = "users.delete_curve"
	PermViewContent        = "users.view_content"
	PermAddContent         = "users.add_content"
	PermDeleteContent      = "users.delete_content"
	PermViewValueType      = "users.view_valuetype"
	PermAddValueType       = "users.add_valuetype"
	PermDeleteValueType    = "users.delete_valuetype"
	PermViewRequest        = "users.view_request"
	PermAddRequest         = "users.add_request"
	PermChangeRequest      = "users.change_request"
	PermDeleteRequest      = "users.delete_request"
	PermAddQuestionaire    = "users.add_questionaire"
	PermDeleteQuestionaire = "users.delete_questionaire"
)

var groupPermissions = map[string][]string{
	GroupGuest: {
		PermViewCurve, PermAddCurve,
		PermViewContent, PermViewValueType, PermViewRequest,
	},
	GroupGeneral: {
		PermViewCurve, PermAddCurve, PermChangeCurve, PermDeleteCurve,
		PermViewContent, PermAddContent,
		PermViewValueType, PermAddValueType,
		PermViewRequest,
	},
	GroupResearchers: {
		PermViewCurve, PermAddCurve, PermChangeCurve, PermDeleteCurve,
		PermViewContent, PermAddContent, PermDeleteContent,
		PermViewValueType, PermAddValueType, PermDeleteValueType,
		PermViewRequest, PermAddRequest, PermChangeRequest, PermDeleteRequest,
		PermAddQuestionaire, PermDeleteQuestionaire,
	},
}

// AllPermissions returns the sorted union of every group's permissions.
func AllPermissions() []string {
	set := map[string]struct{}{}
	for _, perms := range groupPermissions {
		for _, p := range perms {
			set[p] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// Permissions returns the sorted permission codenames granted to u.
// Superusers hold every permission.
func (u *EmailUser) Permissions() []string {
	if u.IsSuperuser {
		return AllPermissions()
	}
	set := map[string]struct{}{}
	for _, g := range u.Groups {
		for _, p := range groupPermissions[g.Name] {
			set[p] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func (u *EmailUser) HasPerm(perm string) bool {
	if !u.IsActive {
		return false
	}
	if u.IsSuperuser {
		return true
	}
	for _, g := range u.Groups {
		for _, p := range groupPermissions[g.Name] {
			if p == perm {
				return true
			}
		}
	}
	return false
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
