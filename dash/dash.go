// Package dash holds the dashboard client's cache keys and the consumers it
// runs for hub change notifications. Cache times are fixed, not configured.
package dash

import (
	"context"
	"time"

	"github.com/unkn0wn-root/hubcache"
	"github.com/unkn0wn-root/hubcache/hub"
)

const (
	DefaultCacheTime   = 60 * time.Minute
	ShortTermCacheTime = 3 * time.Minute
)

var (
	DashboardByUser        = hubcache.NewCacheKey("Dash.dashboard.byuser.{0}", "Dash.dashboard.")
	WidgetsByMonitorPrefix = "Dash.widget.bymonitor.{0}."
	WidgetsByMonitor       = hubcache.NewCacheKey("Dash.widget.bymonitor.{0}.{1}", WidgetsByMonitorPrefix, "Dash.widget.")
	SensorRecordsLatest    = hubcache.NewCacheKey("Dash.sensorrecord.latest.{0}", "Dash.sensorrecord.")
)

func NewKeyService() *hubcache.KeyService {
	return hubcache.NewKeyService(hubcache.KeyOptions{
		DefaultCacheTime:   DefaultCacheTime,
		ShortTermCacheTime: ShortTermCacheTime,
	})
}

// NewKeyRegistry returns the generic templates for the entities the client caches.
func NewKeyRegistry() *hubcache.KeyRegistry {
	return hubcache.NewKeyRegistry(hubcache.DashNamespace, hub.MonitorName, hub.SensorName, hub.SensorRecordName)
}

func Register(d *hubcache.Dispatcher, reg *hubcache.KeyRegistry) {
	d.Register(hub.MonitorName, hubcache.ClearEntity(reg.MustLookup(hub.MonitorName)), monitorChanged)
	d.Register(hub.SensorName, hubcache.ClearEntity(reg.MustLookup(hub.SensorName)), sensorChanged)
	d.Register(hub.SensorRecordName, hubcache.ClearEntity(reg.MustLookup(hub.SensorRecordName)), sensorRecordChanged)
}

func monitorChanged(ctx context.Context, inv *hubcache.Invalidation, ev hubcache.Event) {
	inv.RemoveByPrefix(ctx, WidgetsByMonitorPrefix, ev.Entity)
	var owner int64
	switch m := ev.Entity.(type) {
	case hub.Monitor:
		owner = m.OwnerID
	case *hub.Monitor:
		owner = m.OwnerID
	default:
		return
	}
	inv.Remove(ctx, DashboardByUser, owner)
}

// A sensor's latest records are shown per sensor; the sensor row itself may
// have been renamed or moved.
func sensorChanged(ctx context.Context, inv *hubcache.Invalidation, ev hubcache.Event) {
	inv.Remove(ctx, SensorRecordsLatest, ev.Entity)
}

func sensorRecordChanged(ctx context.Context, inv *hubcache.Invalidation, ev hubcache.Event) {
	switch r := ev.Entity.(type) {
	case hub.SensorRecord:
		inv.Remove(ctx, SensorRecordsLatest, r.SensorID)
	case *hub.SensorRecord:
		inv.Remove(ctx, SensorRecordsLatest, r.SensorID)
	}
}
