package cart

// Storage is the durable local store behind a session's cart and
// wishlist: two independently keyed JSON-serialized sequences. Load
// reports ok=false when no state has ever been saved under the key.
type Storage interface {
	LoadCart() (items []LineItem, ok bool, err error)
	SaveCart(items []LineItem) error
	LoadWishlist() (items []Game, ok bool, err error)
	SaveWishlist(items []Game) error
}
