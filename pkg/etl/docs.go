// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package etl

import (
	"github.com/google/uuid"
)

// Document is a destination search document addressed by (index, id).
type Document interface {
	// DocID returns the canonical UUID string the document is indexed
	// under.
	DocID() string
	// Validate checks the document against its destination schema.
	Validate() error
}

// Credit is an {id, name} pair nested in a movies document.
type Credit struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Movie is a document in the movies index.
type Movie struct {
	ID             string   `json:"id"`
	IMDBRating     *float64 `json:"imdb_rating"`
	Title          string   `json:"title"`
	Description    *string  `json:"description"`
	ActorsNames    []string `json:"actors_names"`
	WritersNames   []string `json:"writers_names"`
	DirectorsNames []string `json:"directors_names"`
	GenresNames    []string `json:"genres_names"`
	Actors         []Credit `json:"actors"`
	Writers        []Credit `json:"writers"`
	Directors      []Credit `json:"directors"`
	Genres         []Credit `json:"genres"`
}

// DocID implements Document.
func (movie Movie) DocID() string { return movie.ID }

// Validate implements Document.
func (movie Movie) Validate() error {
	if !isCanonicalUUID(movie.ID) {
		return Error.New("movie id %q is not a canonical uuid", movie.ID)
	}
	if movie.Title == "" {
		return Error.New("movie %s has no title", movie.ID)
	}
	for _, names := range [][]string{movie.ActorsNames, movie.WritersNames, movie.DirectorsNames, movie.GenresNames} {
		if names == nil {
			return Error.New("movie %s has a nil names array", movie.ID)
		}
	}
	for _, credits := range [][]Credit{movie.Actors, movie.Writers, movie.Directors, movie.Genres} {
		if credits == nil {
			return Error.New("movie %s has a nil credits array", movie.ID)
		}
		for _, credit := range credits {
			if !isCanonicalUUID(credit.ID) {
				return Error.New("movie %s credit id %q is not a canonical uuid", movie.ID, credit.ID)
			}
		}
	}
	return nil
}

// Person is a document in the persons index.
type Person struct {
	ID       string   `json:"id"`
	FullName string   `json:"full_name"`
	Roles    []string `json:"roles"`
	FilmIDs  []string `json:"film_ids"`
}

// DocID implements Document.
func (person Person) DocID() string { return person.ID }

// Validate implements Document.
func (person Person) Validate() error {
	if !isCanonicalUUID(person.ID) {
		return Error.New("person id %q is not a canonical uuid", person.ID)
	}
	if person.Roles == nil || person.FilmIDs == nil {
		return Error.New("person %s has a nil array", person.ID)
	}
	seen := map[string]bool{}
	for _, role := range person.Roles {
		if seen[role] {
			return Error.New("person %s has duplicate role %q", person.ID, role)
		}
		seen[role] = true
	}
	for _, id := range person.FilmIDs {
		if !isCanonicalUUID(id) {
			return Error.New("person %s film id %q is not a canonical uuid", person.ID, id)
		}
	}
	return nil
}

// Film is a film work nested in a genres document.
type Film struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	IMDBRating *float64 `json:"imdb_rating"`
}

// Genre is a document in the genres index.
type Genre struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Filmworks []Film `json:"filmworks"`
}

// DocID implements Document.
func (genre Genre) DocID() string { return genre.ID }

// Validate implements Document.
func (genre Genre) Validate() error {
	if !isCanonicalUUID(genre.ID) {
		return Error.New("genre id %q is not a canonical uuid", genre.ID)
	}
	if genre.Name == "" {
		return Error.New("genre %s has no name", genre.ID)
	}
	if genre.Filmworks == nil {
		return Error.New("genre %s has a nil filmworks array", genre.ID)
	}
	for _, film := range genre.Filmworks {
		if !isCanonicalUUID(film.ID) {
			return Error.New("genre %s film id %q is not a canonical uuid", genre.ID, film.ID)
		}
	}
	return nil
}

func isCanonicalUUID(value string) bool {
	parsed, err := uuid.Parse(value)
	return err == nil && parsed.String() == value
}
