package field

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filepond/internal/common"
)

// Decrypter opens a client-visible reference into v.
type Decrypter interface {
	Decrypt(token string, v any) error
}

// Encrypter seals v into a client-visible reference.
type Encrypter interface {
	Encrypt(v any) (string, error)
}

// Reference is the payload sealed inside a client-visible token.
type Reference struct {
	ID string `json:"id"`
}

// UnmarshalJSON accepts numeric ids as well as strings.
func (r *Reference) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	id := bytes.TrimSpace(raw.ID)
	switch {
	case len(id) == 0 || bytes.Equal(id, []byte("null")):
		r.ID = ""
	case id[0] == '"':
		return json.Unmarshal(id, &r.ID)
	default:
		var n json.Number
		if err := json.Unmarshal(id, &n); err != nil {
			return err
		}
		r.ID = n.String()
	}
	return nil
}

// Issue returns the token the upload widget should submit for id.
func Issue(e Encrypter, id string) (string, error) {
	return e.Encrypt(Reference{ID: id})
}

func decryptID(d Decrypter, token string) (string, error) {
	var ref Reference
	if err := d.Decrypt(token, &ref); err != nil {
		if !errors.Is(err, common.ErrDecryption) {
			err = fmt.Errorf("%w: %v", common.ErrDecryption, err)
		}
		return "", err
	}
	if ref.ID == "" {
		return "", fmt.Errorf("%w: reference has no id", common.ErrDecryption)
	}
	return ref.ID, nil
}
