package picture

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseViewMode(t *testing.T) {
	tests := []struct {
		input       string
		expected    ViewMode
		expectError bool
	}{
		{"slideshow", ViewSlideshow, false},
		{"SLIDESHOW", ViewSlideshow, false},
		{"Gallery", ViewGallery, false},
		{" gallery ", ViewGallery, false},
		{"carousel", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := ParseViewMode(tt.input)
			if tt.expectError {
				assert.ErrorIs(t, err, ErrUnknownViewMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mode)
		})
	}
}

func TestRecord_Validate(t *testing.T) {
	tests := []struct {
		name        string
		record      Record
		expectError bool
	}{
		{
			name:   "valid record",
			record: Record{Name: "a.jpg", Timestamp: "1001", DateTime: "2019-05-05 14:01:02"},
		},
		{
			name:   "datetime is optional",
			record: Record{Name: "a.jpg", Timestamp: "1001"},
		},
		{
			name:        "missing name",
			record:      Record{Timestamp: "1001"},
			expectError: true,
		},
		{
			name:        "missing timestamp",
			record:      Record{Name: "a.jpg"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.expectError {
				assert.ErrorIs(t, err, ErrInvalidRecord)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPollResponse_Decode(t *testing.T) {
	body := `{
		"number_of_pictures": 2,
		"new_pictures": [
			{"picture_name": "a.jpg", "picture_timestamp": "1000", "picture_datetime": "2019-05-05 14:01:02"},
			{"picture_name": "b.jpg", "picture_timestamp": "1001", "picture_datetime": "2019-05-05 14:02:02"}
		],
		"photobooth_status": "idle",
		"last_picture": {"picture_name": "b.jpg", "picture_timestamp": "1001", "picture_datetime": "2019-05-05 14:02:02"},
		"time_param": "all"
	}`

	var resp PollResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.NoError(t, resp.Validate())

	assert.Equal(t, 2, resp.NumberOfPictures)
	assert.Len(t, resp.NewPictures, 2)
	assert.Equal(t, "idle", resp.Status)
	assert.Equal(t, "1001", resp.Watermark())
	assert.Equal(t, "all", resp.TimeParam)
}

func TestPollResponse_Validate(t *testing.T) {
	last := &Record{Name: "b.jpg", Timestamp: "1001"}

	t.Run("empty new pictures is valid", func(t *testing.T) {
		resp := &PollResponse{Status: "idle", LastPicture: last}
		assert.NoError(t, resp.Validate())
	})

	t.Run("missing last picture", func(t *testing.T) {
		resp := &PollResponse{NumberOfPictures: 0}
		err := resp.Validate()
		assert.ErrorIs(t, err, ErrInvalidResponse)
		assert.Equal(t, "", resp.Watermark())
	})

	t.Run("malformed record rejects the response", func(t *testing.T) {
		resp := &PollResponse{
			NumberOfPictures: 2,
			NewPictures:      []Record{{Name: "a.jpg", Timestamp: "1000"}, {Timestamp: "1001"}},
			LastPicture:      last,
		}
		err := resp.Validate()
		assert.ErrorIs(t, err, ErrInvalidResponse)
		assert.Contains(t, err.Error(), "Name")
	})

	t.Run("negative count", func(t *testing.T) {
		resp := &PollResponse{NumberOfPictures: -1, LastPicture: last}
		assert.ErrorIs(t, resp.Validate(), ErrInvalidResponse)
	})
}
