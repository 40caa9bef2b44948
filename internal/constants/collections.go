package constants

const (
	CollectionProducts     = "products"
	CollectionChatSessions = "chat_sessions"
	CollectionUsers        = "users"
)

// Cache keys and patterns
const (
	CacheKeyProductByID        = "product:id:%s"
	CacheKeyProductList        = "products:list:%s"
	CacheKeyProductListPattern = "products:list:*"
	CacheKeyFilterOptions      = "product:filter_options"
	CacheKeyTokenBlacklist     = "blacklist:%s"
	CacheKeyRateLimit          = "ratelimit:genai:%s"
)
