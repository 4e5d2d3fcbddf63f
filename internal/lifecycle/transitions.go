// Package lifecycle - статусы поиска и разрешенные переходы.
//
// Путь статусов (только вперед):
//
//	ACTIVE ──► SHARED ──► SHARED_TO_BUREAU ──► PROCESSED ──► ARCHIVED
//	   │          │               │                 │
//	   └──────────┴───────────────┴─────────────────┴──────────► ARCHIVED
//
// Прыжок вперед через статус разрешен; ARCHIVED конечный.
package lifecycle

import (
	"fmt"
	"strings"

	"searchapp_backend/internal/models"
)

// позиция статуса на пути
var ordinal = map[models.SearchStatus]int{
	models.SearchStatusActive:         0,
	models.SearchStatusShared:         1,
	models.SearchStatusSharedToBureau: 2,
	models.SearchStatusProcessed:      3,
	models.SearchStatusArchived:       4,
}

// roleTargets: в какие статусы роль может перевести поиск
var roleTargets = map[models.UserRole][]models.SearchStatus{
	models.UserRoleTechnicien: {
		models.SearchStatusShared,
		models.SearchStatusSharedToBureau,
	},
	models.UserRoleBureau: {
		models.SearchStatusShared,
		models.SearchStatusSharedToBureau,
		models.SearchStatusProcessed,
		models.SearchStatusArchived,
	},
	models.UserRoleAdmin: {
		models.SearchStatusShared,
		models.SearchStatusSharedToBureau,
		models.SearchStatusProcessed,
		models.SearchStatusArchived,
	},
}

// ParseStatus разбирает статус без учета регистра; пробелы и кавычки
// по краям отбрасываются.
func ParseStatus(raw string) (models.SearchStatus, error) {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, `"'`)
	st := models.SearchStatus(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := ordinal[st]; !ok {
		return "", fmt.Errorf("unknown search status %q", raw)
	}
	return st, nil
}

// Ordinal - позиция на пути, -1 для неизвестного статуса
func Ordinal(s models.SearchStatus) int {
	if o, ok := ordinal[s]; ok {
		return o
	}
	return -1
}

// IsTransitionAllowed: to строго дальше from, либо архивирование
// из любого неархивного статуса.
func IsTransitionAllowed(from, to models.SearchStatus) bool {
	f, t := Ordinal(from), Ordinal(to)
	if f < 0 || t < 0 {
		return false
	}
	if from == models.SearchStatusArchived {
		return false
	}
	if to == models.SearchStatusArchived {
		return true
	}
	return t > f
}

func RoleCanTarget(role models.UserRole, to models.SearchStatus) bool {
	for _, s := range roleTargets[role] {
		if s == to {
			return true
		}
	}
	return false
}

// IsEditable - архивный поиск не редактируется
func IsEditable(s models.SearchStatus) bool {
	return s != models.SearchStatusArchived
}
