package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cleaned = "brand,fuel_type,make_year,mileage_kmpl,engine_cc,owner_count,service_history,transmission,color,insurance_valid,price_usd,car_age\n" +
	"Toyota,Petrol,2015,15.2,1500,1,Full,Manual,Red,Yes,9000,10\n" +
	"Toyota,Diesel,2020,18.0,2000,5,,Automatic,Blue,No,15000,5\n" +
	"Honda,Petrol,2018,16.1,1800,2,,Manual,White,Yes,12000,7\n"

func TestRun(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "processed_car_dataset.csv")
	require.NoError(t, os.WriteFile(data, []byte(cleaned), 0o644))
	chart := filepath.Join(dir, "trend.png")

	var stdout bytes.Buffer
	require.NoError(t, run([]string{"-data", data, "-brand", "Toyota", "-chart", chart, "-list"}, &stdout))

	got := stdout.String()
	assert.Contains(t, got, "brand: Honda, Toyota")
	assert.Contains(t, got, "make_year: 2015-2020")
	assert.Contains(t, got, "Listings: 2 of 3")
	assert.Contains(t, got, "Average Price: $12,000.00")
	assert.Contains(t, got, "Max Price: $15,000.00")
	assert.Contains(t, got, "Min Price: $9,000.00")
	assert.FileExists(t, chart)
}

func TestRun_NoMatches(t *testing.T) {
	data := filepath.Join(t.TempDir(), "processed_car_dataset.csv")
	require.NoError(t, os.WriteFile(data, []byte(cleaned), 0o644))

	var stdout bytes.Buffer
	require.NoError(t, run([]string{"-data", data, "-search", "lamborghini"}, &stdout))
	assert.Contains(t, stdout.String(), "Average Price: -")
}

func TestRun_NoData(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, run([]string{"-data", filepath.Join(t.TempDir(), "absent.csv")}, &stdout))
	assert.Equal(t, "No data to display.\n", stdout.String())
}

func TestRun_EmptyFile(t *testing.T) {
	data := filepath.Join(t.TempDir(), "processed_car_dataset.csv")
	require.NoError(t, os.WriteFile(data, nil, 0o644))

	var stdout bytes.Buffer
	require.NoError(t, run([]string{"-data", data}, &stdout))
	assert.Equal(t, "No data to display.\n", stdout.String())
}
