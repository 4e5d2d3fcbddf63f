package models

type SearchStatus string
type UserRole string

const (
	SearchStatusActive         SearchStatus = "ACTIVE"
	SearchStatusShared         SearchStatus = "SHARED"
	SearchStatusSharedToBureau SearchStatus = "SHARED_TO_BUREAU"
	SearchStatusProcessed      SearchStatus = "PROCESSED"
	SearchStatusArchived       SearchStatus = "ARCHIVED"

	UserRoleAdmin      UserRole = "ADMIN"
	UserRoleBureau     UserRole = "BUREAU"
	UserRoleTechnicien UserRole = "TECHNICIEN"
)

// SearchStatuses - все статусы в порядке жизненного цикла
var SearchStatuses = []SearchStatus{
	SearchStatusActive,
	SearchStatusShared,
	SearchStatusSharedToBureau,
	SearchStatusProcessed,
	SearchStatusArchived,
}

func (s SearchStatus) IsValid() bool {
	for _, st := range SearchStatuses {
		if st == s {
			return true
		}
	}
	return false
}

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRoleBureau, UserRoleTechnicien:
		return true
	}
	return false
}
