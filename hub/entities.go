package hub

import (
	"fmt"
	"strings"

	"github.com/unkn0wn-root/hubcache"
	c "github.com/unkn0wn-root/hubcache/codec"
)

type Sensor struct {
	ID         int64  `json:"id"`
	DeviceID   int64  `json:"deviceId"`
	SystemName string `json:"systemName"`
}

type Device struct {
	ID         int64  `json:"id"`
	OwnerID    int64  `json:"ownerId"`
	SystemName string `json:"systemName"`
}

type SensorRecord struct {
	ID       int64 `json:"id"`
	SensorID int64 `json:"sensorId"`
	DeviceID int64 `json:"deviceId"`
}

type Monitor struct {
	ID      int64 `json:"id"`
	OwnerID int64 `json:"ownerId"`
}

type Setting struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// GenericAttribute is a key/value attached to any entity, grouped by KeyGroup
// (the owning entity's type name).
type GenericAttribute struct {
	ID       int64  `json:"id"`
	EntityID int64  `json:"entityId"`
	KeyGroup string `json:"keyGroup"`
	Key      string `json:"key"`
	Value    string `json:"value"`
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func (e Sensor) EntityID() int64           { return e.ID }
func (e Device) EntityID() int64           { return e.ID }
func (e SensorRecord) EntityID() int64     { return e.ID }
func (e Monitor) EntityID() int64          { return e.ID }
func (e Setting) EntityID() int64          { return e.ID }
func (e GenericAttribute) EntityID() int64 { return e.ID }
func (e User) EntityID() int64             { return e.ID }

// Entity type names, as used in event names and generic keys.
var (
	SensorName           = hubcache.EntityTypeName[Sensor]()
	DeviceName           = hubcache.EntityTypeName[Device]()
	SensorRecordName     = hubcache.EntityTypeName[SensorRecord]()
	MonitorName          = hubcache.EntityTypeName[Monitor]()
	SettingName          = hubcache.EntityTypeName[Setting]()
	GenericAttributeName = hubcache.EntityTypeName[GenericAttribute]()
	UserName             = hubcache.EntityTypeName[User]()
)

var decoders = map[string]func([]byte) (hubcache.Entity, error){
	SensorName:           decodeAs[Sensor],
	DeviceName:           decodeAs[Device],
	SensorRecordName:     decodeAs[SensorRecord],
	MonitorName:          decodeAs[Monitor],
	SettingName:          decodeAs[Setting],
	GenericAttributeName: decodeAs[GenericAttribute],
	UserName:             decodeAs[User],
}

// Decode parses a JSON entity of the named type.
func Decode(entity string, raw []byte) (hubcache.Entity, error) {
	dec, ok := decoders[strings.ToLower(entity)]
	if !ok {
		return nil, fmt.Errorf("hub: unknown entity %q", entity)
	}
	e, err := dec(raw)
	if err != nil {
		return nil, fmt.Errorf("hub: decode %s: %w", entity, err)
	}
	return e, nil
}

func decodeAs[T hubcache.Entity](raw []byte) (hubcache.Entity, error) {
	v, err := c.JSON[T]{}.Decode(raw)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// EntityNames lists every entity this package has consumers for, sorted.
func EntityNames() []string {
	return NewKeyRegistry().Names()
}
