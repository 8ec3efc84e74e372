// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package colocation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jcodagnone/storeaudit/spatial"
	"github.com/jcodagnone/storeaudit/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func located(business, name, branch, lat, lng string) LocatedStore {
	return LocatedStore{Business: business, StoreName: name, BranchCode: branch, Latitude: lat, Longitude: lng}
}

func TestRoundedKey(t *testing.T) {
	key := RoundedKey(4)

	tests := []struct {
		name string
		p    spatial.Point
		want string
	}{
		{"rounds up", spatial.Point{Lat: 51.50007, Lng: -0.12776}, "51.5001,-0.1278"},
		{"rounds down", spatial.Point{Lat: 51.50004, Lng: -0.12781}, "51.5,-0.1278"},
		{"half away from zero", spatial.Point{Lat: 51.50007, Lng: -0.12775}, "51.5001,-0.1278"},
		{"whole degrees", spatial.Point{Lat: 52, Lng: 1}, "52.0,1.0"},
		{"tiny negative", spatial.Point{Lat: 51.5, Lng: -0.00001}, "51.5,0.0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := key(tc.p)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestObserveGroupsRoundedCoordinates(t *testing.T) {
	d := NewDetector(DefaultConfig())

	o1 := d.Observe(located("Food Store", "High Street", "B001", "51.50007", "-0.12776"))
	o2 := d.Observe(located("Food Store", "Market Square", "B002", "51.50008", "-0.12781"))

	assert.True(t, o1.Kept())
	assert.Equal(t, "51.5001,-0.1278", o1.Key)
	assert.Equal(t, o1.Key, o2.Key)

	groups := d.Colocated()
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Stores, 2)
}

func TestObserveRoundingBoundary(t *testing.T) {
	d := NewDetector(DefaultConfig())

	// 3.3m apart, but on either side of a rounding boundary
	o1 := d.Observe(located("Food Store", "A", "", "51.50007", "-0.12776"))
	o2 := d.Observe(located("Food Store", "B", "", "51.50004", "-0.12776"))

	assert.NotEqual(t, o1.Key, o2.Key)
	assert.Empty(t, d.Colocated())
	assert.Len(t, d.Groups(), 2)
}

func TestObserveCategories(t *testing.T) {
	d := NewDetector(DefaultConfig())

	outcomes := []Outcome{
		d.Observe(located("Food Store", "High Street", "B001", "51.5", "-0.12")),
		d.Observe(located("Funeral Home", "Chapel Road", "", "51.5", "-0.12")),
		d.Observe(located("Pharmacy", "Corner", "P001", "51.5", "-0.12")),
		d.Observe(located("food store", "Lower case", "B003", "51.5", "-0.12")),
	}

	assert.True(t, outcomes[0].Kept())
	assert.True(t, outcomes[1].Kept())
	assert.True(t, outcomes[2].Filtered)
	assert.True(t, outcomes[3].Filtered, "category matching is case-sensitive")

	want := []Group{{
		Key: "51.5,-0.12",
		Stores: []LocatedStore{
			located("Food Store", "High Street", "B001", "51.5", "-0.12"),
			located("Funeral Home", "Chapel Road", "", "51.5", "-0.12"),
		},
	}}
	if diff := cmp.Diff(want, d.Colocated()); diff != "" {
		t.Errorf("Colocated() mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, Metrics{Rows: 4, Filtered: 2, Kept: 2}, d.Metrics)
}

func TestObserveInvalidCoordinates(t *testing.T) {
	d := NewDetector(DefaultConfig())

	o := d.Observe(located("Food Store", "Unresolved", "B001", "", ""))
	require.Error(t, o.Err)
	assert.False(t, o.Kept())

	o = d.Observe(located("Food Store", "Garbled", "B002", "51.5", "west"))
	require.Error(t, o.Err)

	// filtered rows are never parsed
	o = d.Observe(located("Pharmacy", "Unresolved", "P001", "", ""))
	require.NoError(t, o.Err)
	assert.True(t, o.Filtered)

	assert.Empty(t, d.Groups())
	assert.Equal(t, Metrics{Rows: 3, Filtered: 1, Invalid: 2}, d.Metrics)
}

func TestSingletonsAreNotColocated(t *testing.T) {
	d := NewDetector(DefaultConfig())
	d.Observe(located("Food Store", "A", "", "51.5", "-0.12"))
	d.Observe(located("Food Store", "B", "", "52.5", "-1.12"))
	d.Observe(located("Food Store", "C", "", "51.5", "-0.12"))

	groups := d.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "51.5,-0.12", groups[0].Key, "first-seen order")
	assert.Equal(t, "52.5,-1.12", groups[1].Key)

	colocated := d.Colocated()
	require.Len(t, colocated, 1)
	assert.Equal(t, []string{"A", "C"}, []string{colocated[0].Stores[0].StoreName, colocated[0].Stores[1].StoreName})
}

func TestCustomConfig(t *testing.T) {
	cfg := Config{Categories: []string{"Pharmacy"}, Precision: 2}
	d := NewDetector(cfg)

	o1 := d.Observe(located("Pharmacy", "A", "", "51.501", "-0.121"))
	o2 := d.Observe(located("Pharmacy", "B", "", "51.503", "-0.119"))
	o3 := d.Observe(located("Food Store", "C", "", "51.501", "-0.121"))

	assert.Equal(t, "51.5,-0.12", o1.Key)
	assert.Equal(t, o1.Key, o2.Key)
	assert.True(t, o3.Filtered)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "zero precision", mutate: func(c *Config) { c.Precision = 0 }},
		{name: "max precision", mutate: func(c *Config) { c.Precision = MaxPrecision }},
		{name: "precision overflows", mutate: func(c *Config) { c.Precision = 309 }, wantErr: "precision"},
		{name: "negative precision", mutate: func(c *Config) { c.Precision = -400 }, wantErr: "precision"},
		{name: "h3 resolution", mutate: func(c *Config) { c.H3Resolution = 9 }},
		{name: "h3 resolution too fine", mutate: func(c *Config) { c.H3Resolution = 16 }, wantErr: "h3 resolution"},
		{name: "negative h3 resolution", mutate: func(c *Config) { c.H3Resolution = -1 }, wantErr: "h3 resolution"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			tc.mutate(&config)

			err := config.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestObserveExtremePrecisionKeepsDistinctStores(t *testing.T) {
	for _, precision := range []int{309, -400} {
		d := NewDetector(Config{Categories: []string{"Food"}, Precision: precision})

		o1 := d.Observe(located("Food Store", "A", "B1", "51.5", "-0.12"))
		o2 := d.Observe(located("Food Store", "B", "B2", "10", "20"))

		require.True(t, o1.Kept())
		require.True(t, o2.Kept())
		assert.NotEqual(t, o1.Key, o2.Key)
		assert.NotContains(t, o1.Key, "NaN")
		assert.Empty(t, d.Colocated())
	}
}

func TestH3Key(t *testing.T) {
	key := H3Key(9)

	a, err := key(spatial.Point{Lat: 51.501009, Lng: -0.141588})
	require.NoError(t, err)
	assert.Len(t, a, 15)

	same, err := key(spatial.Point{Lat: 51.501009, Lng: -0.141588})
	require.NoError(t, err)
	assert.Equal(t, a, same)

	far, err := key(spatial.Point{Lat: 51.52018, Lng: -0.09771})
	require.NoError(t, err)
	assert.NotEqual(t, a, far)

	_, err = H3Key(16)(spatial.Point{Lat: 51.5, Lng: -0.12})
	require.Error(t, err)
}

func TestConfigKeyFunc(t *testing.T) {
	cfg := DefaultConfig()
	p := spatial.Point{Lat: 51.50007, Lng: -0.12776}

	k, err := cfg.KeyFunc()(p)
	require.NoError(t, err)
	assert.Equal(t, "51.5001,-0.1278", k)

	cfg.H3Resolution = 12
	h, err := cfg.KeyFunc()(p)
	require.NoError(t, err)

	want, err := H3Key(12)(p)
	require.NoError(t, err)
	assert.Equal(t, want, h)
}

func TestBind(t *testing.T) {
	header := store.NewHeader([]string{"store_name", "business", "_postcode_latitude", "_postcode_longitude", "branch_code"})
	schema, err := Bind(header)
	require.NoError(t, err)

	s := schema.Store(store.NewRecord(header, 7, []string{"High Street", "Food Store", "51.5", "-0.12", "B001"}))
	assert.Equal(t, LocatedStore{
		Line:       7,
		Business:   "Food Store",
		StoreName:  "High Street",
		BranchCode: "B001",
		Latitude:   "51.5",
		Longitude:  "-0.12",
	}, s)

	// branch_code is optional
	header = store.NewHeader([]string{"store_name", "business", "_postcode_latitude", "_postcode_longitude"})
	schema, err = Bind(header)
	require.NoError(t, err)
	s = schema.Store(store.NewRecord(header, 2, []string{"High Street", "Food Store", "51.5", "-0.12"}))
	assert.Empty(t, s.BranchCode)

	_, err = Bind(store.NewHeader([]string{"store_name", "business", "latitude", "longitude"}))
	require.Error(t, err)
}

func TestMetricsMerge(t *testing.T) {
	m := &Metrics{Rows: 1, Kept: 1}
	m.Merge(&Metrics{Rows: 2, Filtered: 1, Invalid: 1, Groups: 1})
	assert.Equal(t, Metrics{Rows: 3, Filtered: 1, Invalid: 1, Kept: 1, Groups: 1}, *m)
}
