package pincode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/pincode/521101":
			_, _ = w.Write([]byte(`[{"Message":"Number of pincode(s) found:2","Status":"Success","PostOffice":[
				{"Name":"Gannavaram","District":"Krishna","State":"Andhra Pradesh","Pincode":"521101"},
				{"Name":"Kesarapalli","District":"Krishna","State":"Andhra Pradesh","Pincode":"521101"}]}]`))
		case "/pincode/000000":
			_, _ = w.Write([]byte(`[{"Message":"No records found","Status":"Error","PostOffice":null}]`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL + "/")

	office, err := client.Lookup(context.Background(), " 521101 ")
	require.NoError(t, err)
	assert.Equal(t, "Gannavaram", office.Name)
	assert.Equal(t, "Krishna", office.District)
	assert.Equal(t, "Andhra Pradesh", office.State)

	_, err = client.Lookup(context.Background(), "000000")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.Lookup(context.Background(), "999999")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = client.Lookup(context.Background(), "52110")
	assert.ErrorIs(t, err, ErrInvalidPincode)
}
