package activity

// ListOptions provides filtering options for listing activity.
type ListOptions struct {
	ItemID *string
	Type   *Type
	Limit  int
	Offset int
}
