// Package playlist содержит клиент удалённого плейлиста и модель его данных
package playlist

import (
	"fmt"
	"strings"
)

// Track описывает трек, полученный от бэкенда
type Track struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	PreviewURL string `json:"previewUrl,omitempty"`
	SpotifyURL string `json:"spotifyUrl"`
}

// HasPreview возвращает true, если у трека есть ссылка на превью
func (t Track) HasPreview() bool {
	return strings.TrimSpace(t.PreviewURL) != ""
}

// Playlist представляет плейлист; порядок треков совпадает с порядком воспроизведения
type Playlist struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Tracks []Track `json:"tracks"`
}

// Len возвращает количество треков
func (p *Playlist) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Tracks)
}

// IndexOf возвращает позицию трека с указанным ID или -1
func (p *Playlist) IndexOf(id string) int {
	if p == nil {
		return -1
	}
	for i := range p.Tracks {
		if p.Tracks[i].ID == id {
			return i
		}
	}
	return -1
}

// TrackByID возвращает трек по ID
func (p *Playlist) TrackByID(id string) (*Track, error) {
	idx := p.IndexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("трека с ID %s не найдено", id)
	}
	return &p.Tracks[idx], nil
}

// validateTracks проверяет форму декодированного ответа
func validateTracks(tracks []Track) error {
	seen := make(map[string]int, len(tracks))
	for i, t := range tracks {
		if strings.TrimSpace(t.ID) == "" {
			return &ValidationError{Index: i, Reason: "пустой id"}
		}
		if strings.TrimSpace(t.Name) == "" {
			return &ValidationError{Index: i, Reason: fmt.Sprintf("пустое название у трека %s", t.ID)}
		}
		if prev, ok := seen[t.ID]; ok {
			return &ValidationError{Index: i, Reason: fmt.Sprintf("id %s уже встречался в позиции %d", t.ID, prev)}
		}
		seen[t.ID] = i
	}
	return nil
}
