package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phillip/nft-ticketing-go/config"
	"github.com/phillip/nft-ticketing-go/models"
	"github.com/phillip/nft-ticketing-go/services"
)

// ---------------- PURCHASE ----------------
func PurchaseTicket(cfg *config.Config, tickets *services.TicketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			EventID       string  `json:"eventId" binding:"required"`
			AttendeeID    string  `json:"attendeeId"`
			TicketType    string  `json:"ticketType" binding:"required"`
			Price         float64 `json:"price" binding:"required"`
			PaymentMethod string  `json:"paymentMethod"`
			WalletAddress string  `json:"walletAddress"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		// --- Attendee defaults to the authenticated user ---
		actor := actorID(c)
		if input.AttendeeID == "" {
			input.AttendeeID = actor
		}
		if actor != "" && input.AttendeeID != actor {
			respondError(c, models.ErrForbidden)
			return
		}

		ctx, cancel := requestContext(c, cfg)
		defer cancel()

		res, err := tickets.Purchase(ctx, services.PurchaseInput{
			EventID:       input.EventID,
			AttendeeID:    input.AttendeeID,
			TicketType:    input.TicketType,
			Price:         input.Price,
			PaymentMethod: input.PaymentMethod,
			WalletAddress: input.WalletAddress,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"ticket":  res.Ticket.Public(),
			"message": res.Message,
		})
	}
}

// ---------------- TICKET TYPES ----------------
func ListTicketTypes() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ticketTypes": models.TicketCatalog})
	}
}
