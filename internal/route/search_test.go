package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveSearch(t *testing.T) {
	r := HAFLA()

	tests := []struct {
		query  string
		target SearchTarget
	}{
		{"école", TargetDestination},
		{"school", TargetDestination},
		{"ÉCOLE El Ghazala", TargetDestination},
		{"  School  ", TargetDestination},
		{"ecole primaire", TargetDestination},
		{"المدرسة", TargetDestination},
		{"maison", TargetOrigin},
		{"home", TargetOrigin},
		{"Back HOME", TargetOrigin},
		{"المنزل", TargetOrigin},
		{"home school", TargetDestination},
		{"xyz", TargetNone},
		{"", TargetNone},
		{"   ", TargetNone},
	}

	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			wp, target := r.ResolveSearch(tc.query)
			assert.Equal(t, tc.target, target)
			switch tc.target {
			case TargetDestination:
				assert.Equal(t, r.Destination(), wp)
			case TargetOrigin:
				assert.Equal(t, r.Origin(), wp)
			default:
				assert.Equal(t, Waypoint{}, wp)
			}
		})
	}
}
