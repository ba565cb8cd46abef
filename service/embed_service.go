package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"elaina/models"
)

const (
	maxEmbedNameLength = 32

	// MaxReferencedEmbeds is the number of embeds a single Discord message can carry
	MaxReferencedEmbeds = 10
)

var embedReferencePattern = regexp.MustCompile(`\{embed:([^}]+)\}`)

// EmbedReferences returns the names referenced as {embed:name} in text, in order
func EmbedReferences(text string) []string {
	matches := embedReferencePattern.FindAllStringSubmatch(text, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSpace(m[1]))
	}
	return names
}

// StripEmbedReferences removes every {embed:name} token from text
func StripEmbedReferences(text string) string {
	return strings.TrimSpace(embedReferencePattern.ReplaceAllString(text, ""))
}

// NormalizeEmbedName trims name and checks it can be stored and referenced
func NormalizeEmbedName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxEmbedNameLength {
		return "", ErrInvalidName
	}
	if strings.ContainsAny(name, "{}") {
		return "", ErrInvalidName
	}
	return name, nil
}

type embedService struct {
	embedRepo EmbedRepository
	guildID   int64
}

// NewEmbedService creates an embed service for one guild
func NewEmbedService(embedRepo EmbedRepository, guildID int64) EmbedService {
	return &embedService{embedRepo: embedRepo, guildID: guildID}
}

// Create stores a blank embed under name
func (s *embedService) Create(ctx context.Context, name string) (*models.StoredEmbed, error) {
	name, err := NormalizeEmbedName(name)
	if err != nil {
		return nil, err
	}

	existing, err := s.embedRepo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check embed: %w", err)
	}
	if existing != nil {
		return nil, ErrEmbedExists
	}

	embed := &models.StoredEmbed{GuildID: s.guildID, Name: name}
	if err := s.embedRepo.Create(ctx, embed); err != nil {
		return nil, fmt.Errorf("failed to create embed: %w", err)
	}
	return embed, nil
}

// Get returns the embed called name
func (s *embedService) Get(ctx context.Context, name string) (*models.StoredEmbed, error) {
	name, err := NormalizeEmbedName(name)
	if err != nil {
		return nil, err
	}
	embed, err := s.embedRepo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get embed: %w", err)
	}
	if embed == nil {
		return nil, ErrEmbedNotFound
	}
	return embed, nil
}

// Save writes back an edited embed
func (s *embedService) Save(ctx context.Context, embed *models.StoredEmbed) error {
	if err := s.embedRepo.Update(ctx, embed); err != nil {
		return fmt.Errorf("failed to save embed: %w", err)
	}
	return nil
}

// Delete removes the embed called name
func (s *embedService) Delete(ctx context.Context, name string) error {
	name, err := NormalizeEmbedName(name)
	if err != nil {
		return err
	}
	deleted, err := s.embedRepo.Delete(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to delete embed: %w", err)
	}
	if !deleted {
		return ErrEmbedNotFound
	}
	return nil
}

// List returns every embed of the guild
func (s *embedService) List(ctx context.Context) ([]*models.StoredEmbed, error) {
	embeds, err := s.embedRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list embeds: %w", err)
	}
	return embeds, nil
}

// Referenced resolves the {embed:name} references in text, skipping unknown names
func (s *embedService) Referenced(ctx context.Context, text string) ([]*models.StoredEmbed, error) {
	var embeds []*models.StoredEmbed
	for _, name := range EmbedReferences(text) {
		if len(embeds) == MaxReferencedEmbeds {
			break
		}
		embed, err := s.embedRepo.GetByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve embed %q: %w", name, err)
		}
		if embed != nil {
			embeds = append(embeds, embed)
		}
	}
	return embeds, nil
}
