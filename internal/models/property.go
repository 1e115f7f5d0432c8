package models

// PropertyStatus is the moderation state of a listing in the catalog.
type PropertyStatus string

const (
	PropertyStatusPending  PropertyStatus = "pending"
	PropertyStatusApproved PropertyStatus = "approved"
	PropertyStatusRejected PropertyStatus = "rejected"
)

// PropertyLocation mirrors the address block of a catalog listing.
type PropertyLocation struct {
	Address string `bson:"address" json:"address"`
	City    string `bson:"city" json:"city"`
}

// Property is the read-only view of a listing that the inquiry core needs.
// Listings themselves are owned by the catalog.
type Property struct {
	ID       string           `bson:"_id" json:"id"`
	SellerID string           `bson:"seller_id" json:"seller_id"`
	Title    string           `bson:"title" json:"title"`
	Status   PropertyStatus   `bson:"status" json:"status"`
	Location PropertyLocation `bson:"location" json:"location"`
}

// IsApproved reports whether the listing is publicly visible and open for inquiries.
func (p *Property) IsApproved() bool {
	return p.Status == PropertyStatusApproved
}

// MeetingAddress returns the address used as a fallback meeting place.
func (p *Property) MeetingAddress() string {
	switch {
	case p.Location.Address != "" && p.Location.City != "":
		return p.Location.Address + ", " + p.Location.City
	default:
		return p.Location.Address
	}
}
