// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package etl

// The transformers are pure functions from denormalized rows to destination
// documents. This is the single place loosely typed database aggregates
// cross into typed documents, so every output is validated here and a
// violation surfaces as ErrTransform instead of being retried.

// Source roles.
const (
	roleActor    = "actor"
	roleWriter   = "writer"
	roleDirector = "director"
)

// TransformMovies reshapes denormalized film rows into movies documents.
func TransformMovies(films []DenormalizedMovie) ([]Document, error) {
	docs := make([]Document, 0, len(films))
	for _, film := range films {
		movie := Movie{
			ID:             film.ID.String(),
			IMDBRating:     film.Rating,
			Title:          film.Title,
			Description:    film.Description,
			ActorsNames:    []string{},
			WritersNames:   []string{},
			DirectorsNames: []string{},
			GenresNames:    []string{},
			Actors:         []Credit{},
			Writers:        []Credit{},
			Directors:      []Credit{},
			Genres:         []Credit{},
		}

		for _, person := range film.Persons {
			credit := Credit{ID: person.ID, Name: person.FullName}
			switch person.Role {
			case roleActor:
				movie.Actors = append(movie.Actors, credit)
				movie.ActorsNames = append(movie.ActorsNames, person.FullName)
			case roleWriter:
				movie.Writers = append(movie.Writers, credit)
				movie.WritersNames = append(movie.WritersNames, person.FullName)
			case roleDirector:
				movie.Directors = append(movie.Directors, credit)
				movie.DirectorsNames = append(movie.DirectorsNames, person.FullName)
			default:
				return nil, ErrTransform.New("movie %s: unknown role %q for person %s", movie.ID, person.Role, person.ID)
			}
		}

		for _, genre := range film.Genres {
			movie.Genres = append(movie.Genres, Credit{ID: genre.ID, Name: genre.Name})
			movie.GenresNames = append(movie.GenresNames, genre.Name)
		}

		if err := movie.Validate(); err != nil {
			return nil, ErrTransform.Wrap(err)
		}
		docs = append(docs, movie)
	}
	return docs, nil
}

// TransformPersons reshapes denormalized person rows into persons
// documents. Roles and film ids are deduplicated in first-seen order so the
// output is deterministic for a given input.
func TransformPersons(persons []DenormalizedPerson) ([]Document, error) {
	docs := make([]Document, 0, len(persons))
	for _, row := range persons {
		person := Person{
			ID:       row.ID.String(),
			FullName: row.FullName,
			Roles:    []string{},
			FilmIDs:  []string{},
		}

		seenRoles := map[string]bool{}
		seenFilms := map[string]bool{}
		for _, film := range row.Films {
			if !seenFilms[film.ID] {
				seenFilms[film.ID] = true
				person.FilmIDs = append(person.FilmIDs, film.ID)
			}
			if !seenRoles[film.Role] {
				seenRoles[film.Role] = true
				person.Roles = append(person.Roles, film.Role)
			}
		}

		if err := person.Validate(); err != nil {
			return nil, ErrTransform.Wrap(err)
		}
		docs = append(docs, person)
	}
	return docs, nil
}

// TransformGenres reshapes denormalized genre rows into genres documents.
func TransformGenres(genres []DenormalizedGenre) ([]Document, error) {
	docs := make([]Document, 0, len(genres))
	for _, row := range genres {
		genre := Genre{
			ID:        row.ID.String(),
			Name:      row.Name,
			Filmworks: []Film{},
		}
		for _, film := range row.Films {
			genre.Filmworks = append(genre.Filmworks, Film{
				ID:         film.ID,
				Title:      film.Title,
				IMDBRating: film.IMDBRating,
			})
		}

		if err := genre.Validate(); err != nil {
			return nil, ErrTransform.Wrap(err)
		}
		docs = append(docs, genre)
	}
	return docs, nil
}
