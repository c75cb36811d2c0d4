package domain

// CartItem is one meal line in a user's shopping cart. Meal is filled in when
// the cart is read back.
type CartItem struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`
	MealID int64 `json:"meal_id"`
	Amount int   `json:"amount"`
	Meal   *Meal `json:"meal,omitempty"`
}
