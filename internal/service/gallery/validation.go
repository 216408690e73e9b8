package gallery

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"gallery/internal/config"
	"gallery/internal/domain"
	models "gallery/internal/domain/models/gallery"
	svc "gallery/internal/domain/services/gallery"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var folderNamePattern = regexp.MustCompile(`^[^/\x00-\x1f]+$`)

// folderNameRules is shared by create and rename
func folderNameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("folder name cannot be empty"),
		validation.RuneLength(1, config.MaxFolderNameLength),
		validation.Match(folderNamePattern).Error("folder name cannot contain slashes or control characters"),
	}
}

// normalizeFolderName trims the name and validates it.
func normalizeFolderName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := validation.Validate(name, folderNameRules()...); err != nil {
		return "", &domain.ValidationError{Message: fmt.Sprintf("invalid folder name: %v", err)}
	}
	return name, nil
}

// validatePath checks every segment of a path supplied by a caller.
func validatePath(path models.Path) error {
	if len(path) > config.MaxPathDepth {
		return &domain.ValidationError{Message: fmt.Sprintf("path exceeds maximum depth of %d", config.MaxPathDepth)}
	}
	for _, segment := range path {
		if err := validation.Validate(segment, folderNameRules()...); err != nil {
			return &domain.ValidationError{Message: fmt.Sprintf("invalid path segment %q: %v", segment, err)}
		}
	}
	return nil
}

// validateArtworkInput validates an artwork creation request
func validateArtworkInput(input *svc.ArtworkInput) error {
	err := validation.ValidateStruct(input,
		validation.Field(&input.Title,
			validation.Required.Error("title is required"),
			validation.RuneLength(1, config.MaxArtworkTitleLength),
		),
		validation.Field(&input.Description,
			validation.RuneLength(0, config.MaxArtworkDescriptionLength),
		),
		validation.Field(&input.ImageURL,
			validation.When(input.Image == nil, validation.Required.Error("an image or image URL is required")),
			validation.By(imageURI),
		),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	if input.Image != nil && len(input.Image.Data) == 0 {
		return &domain.ValidationError{Message: "image is empty"}
	}
	return nil
}

// validateArtworkPatch validates a partial artwork update
func validateArtworkPatch(patch *models.ArtworkPatch) error {
	if patch.IsEmpty() {
		return &domain.ValidationError{Message: "at least one field must be provided"}
	}

	rules := []*validation.FieldRules{}
	if patch.Title != nil {
		rules = append(rules, validation.Field(&patch.Title,
			validation.By(nonBlank("title")),
			validation.RuneLength(1, config.MaxArtworkTitleLength),
		))
	}
	if patch.Description != nil {
		rules = append(rules, validation.Field(&patch.Description,
			validation.RuneLength(0, config.MaxArtworkDescriptionLength),
		))
	}
	if patch.ImageURL != nil {
		rules = append(rules, validation.Field(&patch.ImageURL,
			validation.By(nonBlank("image_url")),
			validation.By(imageURI),
		))
	}

	if err := validation.ValidateStruct(patch, rules...); err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}

func nonBlank(field string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(*string)
		if s == nil || strings.TrimSpace(*s) == "" {
			return fmt.Errorf("%s cannot be blank", field)
		}
		return nil
	}
}

// imageURI accepts an absolute URI with a host ("https://cdn/x.png") or an
// absolute path on this server ("/media/artworks/x.png"). Empty passes;
// Required decides whether it may be empty.
func imageURI(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case *string:
		if v == nil {
			return nil
		}
		raw = *v
	}
	if raw == "" {
		return nil
	}

	if strings.IndexFunc(raw, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) >= 0 {
		return errors.New("must be a URI without spaces")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return errors.New("must be a valid URI")
	}
	switch {
	case u.Scheme != "":
		if u.Host == "" {
			return errors.New("must include a host")
		}
	case u.Host != "" || !strings.HasPrefix(u.Path, "/"):
		return errors.New("must be an absolute URL or a path starting with /")
	}
	return nil
}
