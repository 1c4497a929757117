package telegram

import (
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	keyHash     = "hash"
	keyUser     = "user"
	keyAuthDate = "auth_date"
	keyQueryID  = "query_id"
)

// User is the identity block of the init data. Clients must treat it as an
// unverified hint until a backend has checked the hash.
type User struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

// DisplayName returns the best human readable name available.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return strconv.FormatInt(u.ID, 10)
}

// InitData is the parsed form of the Mini App init data query string.
type InitData struct {
	Raw      string
	QueryID  string
	User     *User
	AuthDate time.Time
	Hash     string
	Values   url.Values
}

// Parse decodes raw init data without checking its signature.
func Parse(raw string) (*InitData, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyInitData
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, errors.Wrap(err, "[telegram.Parse] malformed init data")
	}

	data := &InitData{
		Raw:     raw,
		QueryID: values.Get(keyQueryID),
		Hash:    values.Get(keyHash),
		Values:  values,
	}

	if ts := values.Get(keyAuthDate); ts != "" {
		secs, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "[telegram.Parse] invalid auth_date")
		}
		data.AuthDate = time.Unix(secs, 0).UTC()
	}

	if rawUser := values.Get(keyUser); rawUser != "" {
		user, err := parseUser(rawUser)
		if err != nil {
			return nil, err
		}
		data.User = user
	}
	return data, nil
}

func parseUser(raw string) (*User, error) {
	var user User
	if err := json.Unmarshal([]byte(raw), &user); err == nil {
		if user.ID == 0 {
			return nil, ErrInvalidUser
		}
		return &user, nil
	}
	// Some hosts and test fixtures send a bare numeric id.
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, ErrInvalidUser
	}
	return &User{ID: id}, nil
}

// DataCheckString builds the string the hash is computed over: every field except
// hash as key=value, sorted, joined with newlines.
func DataCheckString(values url.Values) string {
	pairs := make([]string, 0, len(values))
	for key, v := range values {
		if key == keyHash || len(v) == 0 {
			continue
		}
		pairs = append(pairs, key+"="+v[0])
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "\n")
}
