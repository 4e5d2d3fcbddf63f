package contextkeys

// Используем кастомный тип, чтобы избежать коллизий
type contextKey string

// DBContextKey - ключ для *gorm.DB (пул или транзакция) в context
const DBContextKey = contextKey("db")

// PrincipalContextKey - ключ для auth.Principal, выставляемого AuthMiddleware
const PrincipalContextKey = contextKey("principal")
