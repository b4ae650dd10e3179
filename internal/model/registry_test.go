package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	et, ok := Lookup("DeviceStateMachine")
	assert.True(t, ok)
	assert.Equal(t, "DeviceStateMachine", et.Name)
	assert.IsType(t, &DeviceStateMachine{}, et.New())

	_, ok = Lookup("DeviceStateMachines")
	assert.False(t, ok, "lookup is exact")
}

func TestNew_ReturnsDistinctInstances(t *testing.T) {
	et, _ := Lookup("DeviceType")
	a := et.New().(*DeviceType)
	b := et.New().(*DeviceType)
	a.Name = "pump"
	assert.Empty(t, b.Name)
}

func TestAll_IsACopy(t *testing.T) {
	all := All()
	all[0] = EntityType{Name: "Mutated"}

	_, ok := Lookup("Organization")
	assert.True(t, ok)
	assert.Equal(t, "Organization", All()[0].Name)
	assert.Len(t, Models(), len(all))
}
