// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package sqliteload

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	roleActor    = "actor"
	roleWriter   = "writer"
	roleDirector = "director"
)

// FilmWork is one row of the target film_work table.
type FilmWork struct {
	ID          uuid.UUID
	Title       string
	Description *string
	Rating      *float64
	Type        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Person is one row of the target person table.
type Person struct {
	ID        uuid.UUID
	FullName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Genre is one row of the target genre table.
type Genre struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PersonFilmWork links a person to a film work under a role.
type PersonFilmWork struct {
	ID         uuid.UUID
	FilmWorkID uuid.UUID
	PersonID   uuid.UUID
	Role       string
	CreatedAt  time.Time
}

// GenreFilmWork links a genre to a film work.
type GenreFilmWork struct {
	ID         uuid.UUID
	FilmWorkID uuid.UUID
	GenreID    uuid.UUID
	CreatedAt  time.Time
}

// Dataset is the transformed legacy database, ready to insert.
type Dataset struct {
	FilmWorks       []FilmWork
	Persons         []Person
	Genres          []Genre
	PersonFilmWorks []PersonFilmWork
	GenreFilmWorks  []GenreFilmWork
}

// Transform converts the fetched legacy data into the normalized schema,
// minting fresh UUIDs and reusing them for repeated names and legacy ids.
func Transform(data LegacyData, now time.Time) (Dataset, error) {
	builder := &datasetBuilder{
		now:            now,
		genresByName:   map[string]uuid.UUID{},
		personsByName:  map[string]uuid.UUID{},
		actorsByOldID:  map[int64]uuid.UUID{},
		writersByOldID: map[string]uuid.UUID{},
	}

	for _, movie := range data.Movies {
		filmID, err := builder.addFilmWork(movie)
		if err != nil {
			return Dataset{}, err
		}

		if movie.Genre != nil {
			for _, name := range splitList(*movie.Genre) {
				builder.linkGenre(filmID, builder.genre(name))
			}
		}
		if movie.Director != nil {
			for _, name := range splitList(*movie.Director) {
				builder.linkPerson(filmID, builder.personByName(name), roleDirector)
			}
		}
		for _, actorID := range data.MovieActors[movie.ID] {
			builder.linkPerson(filmID, builder.actor(actorID, data.ActorNames[actorID]), roleActor)
		}
		for _, writerID := range movie.WriterIDs {
			builder.linkPerson(filmID, builder.writer(writerID, data.WriterNames[writerID]), roleWriter)
		}
	}

	return builder.dataset, nil
}

type datasetBuilder struct {
	dataset Dataset
	now     time.Time

	genresByName   map[string]uuid.UUID
	personsByName  map[string]uuid.UUID
	actorsByOldID  map[int64]uuid.UUID
	writersByOldID map[string]uuid.UUID
}

func (builder *datasetBuilder) addFilmWork(movie LegacyMovie) (uuid.UUID, error) {
	var rating *float64
	if movie.IMDBRating != nil {
		parsed, err := strconv.ParseFloat(*movie.IMDBRating, 64)
		if err != nil {
			return uuid.Nil, Error.New("movie %s: bad rating %q", movie.ID, *movie.IMDBRating)
		}
		rating = &parsed
	}

	id := uuid.New()
	builder.dataset.FilmWorks = append(builder.dataset.FilmWorks, FilmWork{
		ID:          id,
		Title:       movie.Title,
		Description: movie.Plot,
		Rating:      rating,
		Type:        "movie",
		CreatedAt:   builder.now,
		UpdatedAt:   builder.now,
	})
	return id, nil
}

func (builder *datasetBuilder) genre(name string) uuid.UUID {
	if id, ok := builder.genresByName[name]; ok {
		return id
	}
	id := uuid.New()
	builder.genresByName[name] = id
	builder.dataset.Genres = append(builder.dataset.Genres, Genre{
		ID: id, Name: name, CreatedAt: builder.now, UpdatedAt: builder.now,
	})
	return id
}

func (builder *datasetBuilder) personByName(name string) uuid.UUID {
	if id, ok := builder.personsByName[name]; ok {
		return id
	}
	id := uuid.New()
	builder.personsByName[name] = id
	builder.dataset.Persons = append(builder.dataset.Persons, Person{
		ID: id, FullName: name, CreatedAt: builder.now, UpdatedAt: builder.now,
	})
	return id
}

// Legacy actors and writers carry their own id spaces, but names still
// collapse into a single person row.
func (builder *datasetBuilder) actor(oldID int64, name string) uuid.UUID {
	if id, ok := builder.actorsByOldID[oldID]; ok {
		return id
	}
	id := builder.personByName(name)
	builder.actorsByOldID[oldID] = id
	return id
}

func (builder *datasetBuilder) writer(oldID string, name string) uuid.UUID {
	if id, ok := builder.writersByOldID[oldID]; ok {
		return id
	}
	id := builder.personByName(name)
	builder.writersByOldID[oldID] = id
	return id
}

func (builder *datasetBuilder) linkGenre(filmID, genreID uuid.UUID) {
	builder.dataset.GenreFilmWorks = append(builder.dataset.GenreFilmWorks, GenreFilmWork{
		ID: uuid.New(), FilmWorkID: filmID, GenreID: genreID, CreatedAt: builder.now,
	})
}

func (builder *datasetBuilder) linkPerson(filmID, personID uuid.UUID, role string) {
	builder.dataset.PersonFilmWorks = append(builder.dataset.PersonFilmWorks, PersonFilmWork{
		ID: uuid.New(), FilmWorkID: filmID, PersonID: personID, Role: role, CreatedAt: builder.now,
	})
}

func splitList(value string) []string {
	var result []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
