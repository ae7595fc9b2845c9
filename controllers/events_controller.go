package controllers

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/phillip/nft-ticketing-go/config"
	"github.com/phillip/nft-ticketing-go/models"
	"github.com/phillip/nft-ticketing-go/services"
	"github.com/phillip/nft-ticketing-go/utils"
)

const imageCleanupTimeout = 10 * time.Second

// ImageStore hosts uploaded event images. Nil disables multipart uploads.
type ImageStore interface {
	UploadEventImage(ctx context.Context, file multipart.File) (string, error)
	DeleteImage(ctx context.Context, imageURL string) error
}

// eventInput binds from JSON or from multipart form data with an optional
// "image" file in place of imageUrl.
type eventInput struct {
	EventID     string `json:"eventId" form:"eventId"`
	Name        string `json:"name" form:"name" binding:"required"`
	Description string `json:"description" form:"description" binding:"required"`
	Location    string `json:"location" form:"location" binding:"required"`
	ImageURL    string `json:"imageUrl" form:"imageUrl"`
	StartTime   string `json:"startTime" form:"startTime" binding:"required"`
	OrganizerID string `json:"organizerId" form:"organizerId"`
}

func (in eventInput) details() (models.EventDetails, error) {
	start, err := utils.ParseTime(in.StartTime)
	if err != nil {
		return models.EventDetails{}, err
	}
	return models.EventDetails{
		Name:        in.Name,
		Description: in.Description,
		Location:    in.Location,
		ImageURL:    in.ImageURL,
		StartTime:   start,
	}, nil
}

// uploadImage stores the "image" form file when one was sent. It returns an
// empty URL when there is nothing to upload.
func uploadImage(ctx context.Context, c *gin.Context, images ImageStore) (string, error) {
	if images == nil {
		return "", nil
	}
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return "", nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open image %s: %w", fileHeader.Filename, err)
	}
	defer file.Close()

	url, err := images.UploadEventImage(ctx, file)
	if err != nil {
		return "", fmt.Errorf("upload image %s: %w", fileHeader.Filename, err)
	}
	return url, nil
}

// discardUpload removes an image uploaded for a write that then failed. It
// runs on a detached context since the request one may already be done.
func discardUpload(ctx context.Context, images ImageStore, url string) {
	if url == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), imageCleanupTimeout)
	defer cancel()
	if err := images.DeleteImage(ctx, url); err != nil {
		slog.Warn("delete orphaned event image", "url", url, "error", err)
	}
}

// ---------------- CREATE ----------------
func CreateEvent(cfg *config.Config, events *services.EventService, images ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input eventInput
		if err := c.ShouldBind(&input); err != nil {
			bindError(c, err)
			return
		}

		// --- Organizer defaults to the authenticated user ---
		actor := actorID(c)
		if input.OrganizerID == "" {
			input.OrganizerID = actor
		}
		if actor != "" && input.OrganizerID != actor {
			respondError(c, models.ErrForbidden)
			return
		}

		details, err := input.details()
		if err != nil {
			respondError(c, err)
			return
		}

		ctx, cancel := requestContext(c, cfg)
		defer cancel()

		url, err := uploadImage(ctx, c, images)
		if err != nil {
			respondError(c, err)
			return
		}
		if url != "" {
			details.ImageURL = url
		}

		event, err := events.Create(ctx, services.CreateEventInput{EventDetails: details, OrganizerID: input.OrganizerID})
		if err != nil {
			discardUpload(ctx, images, url)
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "Event created successfully",
			"event":   event,
		})
	}
}

// ---------------- LIST ----------------
func ListEvents(cfg *config.Config, events *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.EventFilter
		if org, ok := c.GetQuery("organizerId"); ok {
			if org == "" {
				respondError(c, models.MissingField("organizerId"))
				return
			}
			filter.OrganizerID = org
		}

		ctx, cancel := requestContext(c, cfg)
		defer cancel()

		list, err := events.List(ctx, filter)
		if err != nil {
			respondError(c, err)
			return
		}
		if len(list) == 0 {
			c.JSON(http.StatusOK, gin.H{"events": []models.Event{}})
			return
		}

		// --- Pick the most recently updated event ---
		latest := list[0]
		sold := 0
		for _, ev := range list {
			if ev.UpdatedAt.After(latest.UpdatedAt) {
				latest = ev
			}
			sold += ev.TicketsSold
		}

		etag := utils.GenerateETag(latest.ID, latest.UpdatedAt, len(list), sold)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)
		c.Header("Last-Modified", latest.UpdatedAt.UTC().Format(http.TimeFormat))

		c.JSON(http.StatusOK, gin.H{"events": list})
	}
}

// ---------------- GET ----------------
func GetEvent(cfg *config.Config, events *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c, cfg)
		defer cancel()

		event, err := events.Get(ctx, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		etag := utils.GenerateETag(event.ID, event.UpdatedAt, event.TicketsSold)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)

		c.JSON(http.StatusOK, gin.H{"event": event})
	}
}

// ---------------- UPDATE ----------------
func UpdateEvent(cfg *config.Config, events *services.EventService, images ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input eventInput
		if err := c.ShouldBind(&input); err != nil {
			bindError(c, err)
			return
		}
		if input.EventID == "" {
			respondError(c, models.MissingField("eventId"))
			return
		}

		details, err := input.details()
		if err != nil {
			respondError(c, err)
			return
		}

		ctx, cancel := requestContext(c, cfg)
		defer cancel()

		// ✅ Handle replacement image (multipart form)
		url, err := uploadImage(ctx, c, images)
		if err != nil {
			respondError(c, err)
			return
		}
		var previousImage string
		if url != "" {
			if existing, err := events.Get(ctx, input.EventID); err == nil {
				previousImage = existing.ImageURL
			}
			details.ImageURL = url
		}

		updated, err := events.Update(ctx, services.UpdateEventInput{
			EventID:      input.EventID,
			EventDetails: details,
			ActorID:      actorID(c),
		})
		if err != nil {
			discardUpload(ctx, images, url)
			respondError(c, err)
			return
		}

		if previousImage != "" && previousImage != url && utils.IsHostedImage(previousImage) {
			if err := images.DeleteImage(ctx, previousImage); err != nil {
				slog.Warn("delete replaced event image", "event_id", input.EventID, "error", err)
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Event updated successfully",
			"event":   updated,
		})
	}
}

// ---------------- STATUS ----------------
func SetEventStatus(cfg *config.Config, events *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Status models.EventStatus `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			bindError(c, err)
			return
		}

		ctx, cancel := requestContext(c, cfg)
		defer cancel()

		updated, err := events.SetStatus(ctx, services.SetStatusInput{
			EventID: c.Param("id"),
			Status:  input.Status,
			ActorID: actorID(c),
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Event status updated",
			"event":   updated,
		})
	}
}

// ---------------- ATTENDEES ----------------
func ListAttendees(cfg *config.Config, tickets *services.TicketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c, cfg)
		defer cancel()

		attendees, err := tickets.ListAttendees(ctx, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		if attendees == nil {
			attendees = []models.Ticket{}
		}

		c.JSON(http.StatusOK, gin.H{"attendees": attendees})
	}
}
