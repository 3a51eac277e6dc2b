// Package favorites defines the canonical identifier used for favorite
// membership and the conversion from the shapes the remote API returns.
//
// The favorites endpoint is inconsistent: an entry may be a bare identifier
// (7 or "7") or a record carrying one ({"movie_id": 7} or {"id": 7}). Ref is a
// tagged union over those shapes and Normalize is the only way to turn one into
// an ID, so the rest of the module compares plain strings.
//
// # Usage
//
//	var refs []favorites.Ref
//	_ = json.Unmarshal(body, &refs)
//
//	set, err := favorites.NormalizeAll(refs)
//	if err != nil {
//	    // some entries were skipped, set holds the rest
//	}
//	set.Has("7")
//
// Consumer item types implement Identifiable so IDOf can derive the key:
//
//	func (m Movie) FavoriteRef() favorites.Ref {
//	    return favorites.Record(m.MovieID, m.ID)
//	}
//
// # Error Handling
//
//   - ErrInvalidRef   – entry is neither a scalar nor an object
//   - ErrMissingID    – record carries neither movie_id nor id
//   - ErrInvalidItem  – IDOf was given a value it cannot identify
package favorites
