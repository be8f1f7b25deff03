package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/wallyhq/wally/protocol"
)

// ListWalls returns the names of every wall in the directory.
func (s *Service) ListWalls(ctx context.Context) ([]string, error) {
	return s.Directory.ListWalls(ctx)
}

// GetWallState returns the same snapshot a joining session receives:
// the wall's entities plus whoever is on the roster right now and what
// they have selected.
func (s *Service) GetWallState(ctx context.Context, name string) (*protocol.WallState, error) {
	wall, err := s.Directory.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	entities, err := s.loadWallEntities(ctx, wall)
	if err != nil {
		return nil, err
	}
	return protocol.NewWallState(
		wall.Name,
		entities.Lines,
		entities.Notes,
		entities.Images,
		s.loadUsers(ctx, name),
		s.selectionsFor(name),
	), nil
}

// GetImageData returns an image's pixel payload as raw bytes plus its
// content type. Payloads are stored as data URLs; one that does not
// parse is served verbatim as text.
func (s *Service) GetImageData(ctx context.Context, id string) (string, []byte, error) {
	data, err := s.Store.GetBinaryData(ctx, id)
	if err != nil {
		return "", nil, err
	}

	rest, ok := strings.CutPrefix(data.Data, "data:")
	if !ok {
		return "text/plain", []byte(data.Data), nil
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "text/plain", []byte(data.Data), nil
	}

	contentType, encoding := meta, ""
	if ct, enc, found := strings.Cut(meta, ";"); found {
		contentType, encoding = ct, enc
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if encoding == "base64" {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("failed to decode data for image %s: %w", id, err)
		}
		return contentType, decoded, nil
	}
	return contentType, []byte(payload), nil
}
