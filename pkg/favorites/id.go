package favorites

import "strconv"

// ID is the canonical string form of an item identifier. All membership
// checks and set operations use it.
type ID string

func (id ID) String() string { return string(id) }

// Identifiable is implemented by consumer items that can be favorited.
type Identifiable interface {
	FavoriteRef() Ref
}

// Normalize converts an entry to its canonical ID. For records movie_id wins
// and an empty or zero movie_id falls back to id.
func Normalize(ref Ref) (ID, error) {
	switch ref.kind {
	case KindBareID:
		if ref.bare == "" {
			return "", ErrMissingID
		}
		return ID(ref.bare), nil
	case KindRecord:
		if ref.movieID != "" && ref.movieID != "0" {
			return ID(ref.movieID), nil
		}
		if ref.id != "" {
			return ID(ref.id), nil
		}
		return "", ErrMissingID
	default:
		return "", ErrInvalidRef
	}
}

// IDOf derives the canonical ID from an item handed in by a consumer.
func IDOf(item any) (ID, error) {
	switch v := item.(type) {
	case ID:
		if v == "" {
			return "", ErrInvalidItem
		}
		return v, nil
	case Ref:
		return Normalize(v)
	case Identifiable:
		return Normalize(v.FavoriteRef())
	case string:
		return Normalize(Bare(v))
	case int:
		return ID(strconv.Itoa(v)), nil
	case int64:
		return ID(strconv.FormatInt(v, 10)), nil
	default:
		return "", ErrInvalidItem
	}
}

// UnmarshalJSON accepts a JSON string or number. Null leaves the ID empty.
func (id *ID) UnmarshalJSON(data []byte) error {
	s, err := scalar(data)
	if err != nil {
		return err
	}
	*id = ID(s)
	return nil
}
