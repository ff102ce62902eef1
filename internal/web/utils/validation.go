package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"

	dbmodels "github.com/collectorsden/shelftrack/internal/database/models"
	webmodels "github.com/collectorsden/shelftrack/internal/web/models"
)

// ValidationError describes one rejected field.
type ValidationError struct {
	Field       string `json:"field"`
	ErrorType   string `json:"error_type"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

const (
	// MaxNameLength bounds every user-supplied name column.
	MaxNameLength = 255

	// MaxImageSize bounds photo uploads (10MB).
	MaxImageSize int64 = 10 * 1024 * 1024

	minItemYear = 1900
	maxItemYear = 2100
)

var (
	// ValidImageExtensions are the accepted photo file extensions.
	ValidImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

	currencyRegex = regexp.MustCompile(`^[A-Za-z]{3}$`)
)

// ValidateItemRequest checks an item create/update payload.
func ValidateItemRequest(req *webmodels.ItemRequest) []ValidationError {
	var errors []ValidationError

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errors = append(errors, ValidationError{
			Field:       "name",
			ErrorType:   "validation",
			Description: "Name is required",
			Severity:    "critical",
		})
	} else if len(name) > MaxNameLength {
		errors = append(errors, ValidationError{
			Field:       "name",
			ErrorType:   "validation",
			Description: fmt.Sprintf("Name must be at most %d characters", MaxNameLength),
			Severity:    "high",
		})
	}

	if req.Status != "" && !dbmodels.ValidStatus(dbmodels.CanonicalStatus(req.Status)) {
		errors = append(errors, ValidationError{
			Field:       "status",
			ErrorType:   "validation",
			Description: "Status must be one of Owned, Preorder, Sold, Wishlist",
			Severity:    "critical",
		})
	}

	if req.Year != nil && (*req.Year < minItemYear || *req.Year > maxItemYear) {
		errors = append(errors, ValidationError{
			Field:       "year",
			ErrorType:   "validation",
			Description: fmt.Sprintf("Year must be between %d and %d", minItemYear, maxItemYear),
			Severity:    "high",
		})
	}

	if req.URL != "" && !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		errors = append(errors, ValidationError{
			Field:       "url",
			ErrorType:   "validation",
			Description: "URL must start with http:// or https://",
			Severity:    "medium",
		})
	}

	return errors
}

// ValidatePurchaseRequest checks a purchase payload.
func ValidatePurchaseRequest(req *webmodels.PurchaseRequest) []ValidationError {
	var errors []ValidationError

	if req.Currency != "" && !currencyRegex.MatchString(req.Currency) {
		errors = append(errors, ValidationError{
			Field:       "currency",
			ErrorType:   "validation",
			Description: "Currency must be a 3-letter code",
			Severity:    "high",
		})
	}

	for field, value := range map[string]*float64{
		"price":    req.Price,
		"tax":      req.Tax,
		"shipping": req.Shipping,
	} {
		if value != nil && *value < 0 {
			errors = append(errors, ValidationError{
				Field:       field,
				ErrorType:   "validation",
				Description: "Amount must not be negative",
				Severity:    "high",
			})
		}
	}

	for field, value := range map[string]string{
		"order_date":    req.OrderDate,
		"purchase_date": req.PurchaseDate,
		"ship_date":     req.ShipDate,
	} {
		if strings.TrimSpace(value) != "" && webmodels.ParseDate(value) == nil {
			errors = append(errors, ValidationError{
				Field:       field,
				ErrorType:   "format",
				Description: fmt.Sprintf("Date must use the %s format", webmodels.DateLayout),
				Severity:    "high",
			})
		}
	}

	return errors
}

// ValidateCollectionRequest checks a collection create payload.
func ValidateCollectionRequest(req *webmodels.CollectionRequest) []ValidationError {
	var errors []ValidationError

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errors = append(errors, ValidationError{
			Field:       "name",
			ErrorType:   "validation",
			Description: "Name is required",
			Severity:    "critical",
		})
	} else if len(name) > MaxNameLength {
		errors = append(errors, ValidationError{
			Field:       "name",
			ErrorType:   "validation",
			Description: fmt.Sprintf("Name must be at most %d characters", MaxNameLength),
			Severity:    "high",
		})
	}

	return errors
}

// ValidateImageFile checks an uploaded photo's extension and size.
func ValidateImageFile(fileHeader *multipart.FileHeader) []ValidationError {
	var errors []ValidationError

	if fileHeader.Size > MaxImageSize {
		errors = append(errors, ValidationError{
			Field:       "photo",
			ErrorType:   "file_size",
			Description: fmt.Sprintf("Image size must be less than %dMB", MaxImageSize/(1024*1024)),
			Severity:    "critical",
		})
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	validExt := false
	for _, allowed := range ValidImageExtensions {
		if ext == allowed {
			validExt = true
			break
		}
	}
	if !validExt {
		errors = append(errors, ValidationError{
			Field:       "photo",
			ErrorType:   "file_format",
			Description: fmt.Sprintf("Invalid image format. Allowed formats: %s", strings.Join(ValidImageExtensions, ", ")),
			Severity:    "critical",
		})
	}

	return errors
}
