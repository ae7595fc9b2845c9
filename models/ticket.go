package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TicketStatus string

const (
	TicketPending   TicketStatus = "pending"
	TicketConfirmed TicketStatus = "confirmed"
	TicketUsed      TicketStatus = "used"
	TicketCancelled TicketStatus = "cancelled"
)

// Sold reports whether the ticket counts towards sales and revenue.
func (s TicketStatus) Sold() bool {
	return s == TicketConfirmed || s == TicketUsed
}

type TicketType string

const (
	TicketGeneral   TicketType = "general"
	TicketVIP       TicketType = "vip"
	TicketEarlyBird TicketType = "early-bird"
	TicketStudent   TicketType = "student"
)

const DefaultPaymentMethod = "embedded_wallet"

// TicketTier describes a ticket type as offered to attendees. Prices are in SOL.
type TicketTier struct {
	Type        TicketType `json:"type"`
	Price       float64    `json:"price"`
	Description string     `json:"description"`
}

var TicketCatalog = []TicketTier{
	{Type: TicketGeneral, Price: 0.05, Description: "General admission to the event"},
	{Type: TicketVIP, Price: 0.15, Description: "Premium access with exclusive perks"},
	{Type: TicketEarlyBird, Price: 0.03, Description: "Limited time discount pricing"},
	{Type: TicketStudent, Price: 0.02, Description: "Discounted rate for students"},
}

// ParseTicketType normalizes a client supplied ticket type. "standard" is an
// older alias of general.
func ParseTicketType(raw string) (TicketType, bool) {
	if raw == "standard" {
		return TicketGeneral, true
	}
	for _, tier := range TicketCatalog {
		if string(tier.Type) == raw {
			return tier.Type, true
		}
	}
	return "", false
}

type NFTAttribute struct {
	TraitType string `bson:"trait_type" json:"trait_type"`
	Value     string `bson:"value" json:"value"`
}

type NFTMetadata struct {
	Name        string         `bson:"name" json:"name"`
	Description string         `bson:"description" json:"description"`
	Image       string         `bson:"image" json:"image"`
	Attributes  []NFTAttribute `bson:"attributes" json:"attributes"`
}

type Ticket struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID         primitive.ObjectID `bson:"event_id" json:"eventId"`
	AttendeeID      string             `bson:"attendee_id" json:"attendeeId"`
	AttendeeName    string             `bson:"attendee_name" json:"attendeeName"`
	AttendeeEmail   string             `bson:"attendee_email" json:"attendeeEmail"`
	TicketType      TicketType         `bson:"ticket_type" json:"ticketType"`
	Price           float64            `bson:"price" json:"price"`
	Status          TicketStatus       `bson:"status" json:"status"`
	PurchaseDate    time.Time          `bson:"purchase_date" json:"purchaseDate"`
	NFTTokenID      string             `bson:"nft_token_id,omitempty" json:"nftTokenId,omitempty"`
	NFTMetadata     *NFTMetadata       `bson:"nft_metadata,omitempty" json:"nftMetadata,omitempty"`
	QRCode          string             `bson:"qr_code,omitempty" json:"qrCode,omitempty"`
	PaymentMethod   string             `bson:"payment_method" json:"paymentMethod"`
	WalletAddress   string             `bson:"wallet_address,omitempty" json:"walletAddress,omitempty"`
	TransactionHash string             `bson:"transaction_hash,omitempty" json:"transactionHash,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
}

// PublicTicket is the purchase response projection; it leaves out attendee
// contact details and payment references.
type PublicTicket struct {
	ID           primitive.ObjectID `json:"id"`
	EventID      primitive.ObjectID `json:"eventId"`
	TicketType   TicketType         `json:"ticketType"`
	Price        float64            `json:"price"`
	Status       TicketStatus       `json:"status"`
	NFTTokenID   string             `json:"nftTokenId"`
	NFTMetadata  *NFTMetadata       `json:"nftMetadata"`
	PurchaseDate time.Time          `json:"purchaseDate"`
	QRCode       string             `json:"qrCode"`
}

func (t *Ticket) Public() PublicTicket {
	return PublicTicket{
		ID:           t.ID,
		EventID:      t.EventID,
		TicketType:   t.TicketType,
		Price:        t.Price,
		Status:       t.Status,
		NFTTokenID:   t.NFTTokenID,
		NFTMetadata:  t.NFTMetadata,
		PurchaseDate: t.PurchaseDate,
		QRCode:       t.QRCode,
	}
}

// TicketPurchased is broadcast after a purchase commits.
type TicketPurchased struct {
	TicketID     string     `json:"ticketId"`
	EventID      string     `json:"eventId"`
	EventName    string     `json:"eventName"`
	OrganizerID  string     `json:"organizerId"`
	AttendeeID   string     `json:"attendeeId"`
	TicketType   TicketType `json:"ticketType"`
	Price        float64    `json:"price"`
	NFTTokenID   string     `json:"nftTokenId"`
	PurchaseDate time.Time  `json:"purchaseDate"`
}
