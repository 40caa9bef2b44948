package constants

const (
	MsgPromptRequired      = "Prompt is required."
	MsgSessionNotFoundTurn = "Chat session not found or expired. Start a new conversation."
	MsgSessionNotFound     = "Chat session not found or expired."
	MsgMaxTurnsReached     = "Maximum %d turns reached. Please start a new session."
	MsgSessionDeleted      = "Session deleted."
	MsgSessionConflict     = "Chat session was updated by another request. Please retry."
	MsgProviderRateLimited = "Too many requests. Please try again later."
	MsgTooManyRequests     = "Too many requests, please try again later."
	MsgRecommendationSlow  = "The recommendation took too long. Please try again."
	MsgRecommendationLoop  = "The assistant could not finish this request. Please rephrase it."
	MsgInternalError       = "Internal server error"

	MsgProductNotFound      = "Product not found."
	MsgProductInvalidID     = "Invalid product id."
	MsgProductNameTaken     = "Product name is already taken."
	MsgProductNoFlags       = "No valid flag fields provided"
	MsgProductDiscountRange = "Discount must be between 0 and 100"
	MsgValidationError      = "Validation Error"

	MsgUnauthorized  = "Unauthorized"
	MsgUserNotFound  = "User not found."
	MsgUsernameTaken = "Username is already taken."
	MsgWrongPassword = "Wrong password."
)
