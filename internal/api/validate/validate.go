package validate

import (
	"fmt"
	"regexp"

	"github.com/vibecheck/vibecheck/internal/model"
)

// slugRx: lowercase letters, digits and single hyphens, the shape Slugify
// produces. External slugs are checked separately.
var slugRx = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Slug validates a venue slug path parameter.
func Slug(v string) error {
	if v == "" {
		return fmt.Errorf("slug is required")
	}
	if len(v) > 120 {
		return fmt.Errorf("slug exceeds 120 characters")
	}
	if model.IsExternalSlug(v) {
		if model.ExternalPlaceIDFromSlug(v) == "" {
			return fmt.Errorf("external slug is missing a place id")
		}
		return nil
	}
	if !slugRx.MatchString(v) {
		return fmt.Errorf("slug contains invalid characters; allowed lowercase letters, digits, hyphen")
	}
	return nil
}

// VibeLevel validates the reported intensity.
func VibeLevel(v int) error {
	if v < model.VibeLevelMin || v > model.VibeLevelMax {
		return fmt.Errorf("vibeLevel must be between %d and %d", model.VibeLevelMin, model.VibeLevelMax)
	}
	return nil
}

// QueueLength parses an optional queue label into its model value.
func QueueLength(v *string) (*model.QueueLength, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	q := model.QueueLength(*v)
	if !q.IsValid() {
		return nil, fmt.Errorf("queueLength must be one of NONE, SHORT, LONG, INSANE")
	}
	return &q, nil
}

// CoverCharge rejects negative amounts.
func CoverCharge(v *float64) error {
	if v == nil {
		return nil
	}
	if *v < 0 {
		return fmt.Errorf("coverCharge must not be negative")
	}
	return nil
}

func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func MaxLen(field string, v *string, limit int) error {
	if v == nil {
		return nil
	}
	if len(*v) > limit {
		return fmt.Errorf("%s exceeds %d characters", field, limit)
	}
	return nil
}

// Coordinates checks a geographic point.
func Coordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("lat must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("lon must be between -180 and 180")
	}
	return nil
}

// -------- Request specific helpers ----------

// VibeReport validates a report submission body. Queue parsing happens
// separately via QueueLength.
func VibeReport(vibeLevel int, cover *float64, genre, notes, imageURL *string) error {
	if err := VibeLevel(vibeLevel); err != nil {
		return err
	}
	if err := CoverCharge(cover); err != nil {
		return err
	}
	if err := MaxLen("musicGenre", genre, 100); err != nil {
		return err
	}
	if err := MaxLen("notes", notes, 500); err != nil {
		return err
	}
	if err := MaxLen("imageUrl", imageURL, 2048); err != nil {
		return err
	}
	return nil
}

// CreateVenue validates admin venue creation input.
func CreateVenue(name, address string, lat, lon float64) error {
	if err := NonEmpty("name", name); err != nil {
		return err
	}
	if len(name) > 200 {
		return fmt.Errorf("name exceeds 200 characters")
	}
	if err := NonEmpty("address", address); err != nil {
		return err
	}
	return Coordinates(lat, lon)
}

// ExternalVenue validates the materialization payload attached to a report
// against an external slug.
func ExternalVenue(p *model.ExternalPlace) error {
	if p == nil {
		return fmt.Errorf("externalVenue is required for external slugs")
	}
	if err := NonEmpty("externalVenue.name", p.Name); err != nil {
		return err
	}
	return Coordinates(p.Lat, p.Lon)
}
