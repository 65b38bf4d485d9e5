package hub

import (
	"context"

	"github.com/unkn0wn-root/hubcache"
)

// Register wires the hub consumers for every entity in reg into d. Each
// entity gets its generic removal first, then its service-key fan-out.
func Register(d *hubcache.Dispatcher, reg *hubcache.KeyRegistry) {
	fanout := map[string]hubcache.ConsumerFunc{
		SensorName:           sensorChanged,
		DeviceName:           deviceChanged,
		SensorRecordName:     sensorRecordChanged,
		MonitorName:          monitorChanged,
		SettingName:          settingChanged,
		GenericAttributeName: genericAttributeChanged,
		UserName:             userChanged,
	}
	for _, name := range reg.Names() {
		fns := []hubcache.ConsumerFunc{hubcache.ClearEntity(reg.MustLookup(name))}
		if f, ok := fanout[name]; ok {
			fns = append(fns, f)
		}
		d.Register(name, fns...)
	}
}

func sensorChanged(ctx context.Context, inv *hubcache.Invalidation, ev hubcache.Event) {
	s, ok := as[Sensor](ev.Entity)
	if !ok {
		return
	}
	inv.Remove(ctx, SensorByID, s.ID)
	inv.RemoveByPrefix(ctx, SensorsByDeviceIDPrefix, s.DeviceID)
	inv.Remove(ctx, SensorBySystemName, s.SystemName, s.DeviceID)
	inv.RemoveByPrefix(ctx, DeviceCommonLogPrefix, s.DeviceID)
}

func deviceChanged(ctx context.Context, inv *hubcache.Invalidation, ev hubcache.Event) {
	dv, ok := as[Device](ev.Entity)
	if !ok {
		return
	}
	inv.Remove(ctx, DeviceBySystemName, dv.SystemName)
	inv.Remove(ctx, DeviceByID, dv.ID)
	inv.Remove(ctx, DevicesOwnByUser, dv.OwnerID)
	inv.RemoveByPrefix(ctx, DevicesByUserPrefix, dv.OwnerID)
	if ev.Type == hubcache.Delete {
		inv.RemoveByPrefix(ctx, SensorsByDeviceIDPrefix, dv.ID)
		inv.RemoveByPrefix(ctx, DeviceCommonLogPrefix, dv.ID)
	}
}

func sensorRecordChanged(ctx context.Context, inv *hubcache.Invalidation, ev hubcache.Event) {
	r, ok := as[SensorRecord](ev.Entity)
	if !ok {
		return
	}
	if a, ok := inv.Actor(); ok {
		inv.Remove(ctx, SensorRecordsByUserLanguage, a.UserID, a.LanguageID)
	}
	inv.RemoveByPrefix(ctx, DeviceCommonLogPrefix, r.DeviceID)
}

func monitorChanged(ctx context.Context, inv *hubcache.Invalidation, _ hubcache.Event) {
	if a, ok := inv.Actor(); ok {
		inv.RemoveByPrefix(ctx, MonitorsByUserPrefix, a.UserID)
	}
}

func settingChanged(ctx context.Context, inv *hubcache.Invalidation, _ hubcache.Event) {
	inv.Remove(ctx, SettingsAll)
	inv.RemoveByPrefix(ctx, SitemapPrefix)
	inv.RemoveByPrefix(ctx, WidgetPrefix)
	inv.RemoveByPrefix(ctx, LogoPathPrefix)
}

func genericAttributeChanged(ctx context.Context, inv *hubcache.Invalidation, ev hubcache.Event) {
	ga, ok := as[GenericAttribute](ev.Entity)
	if !ok {
		return
	}
	inv.Remove(ctx, GenericAttributesByEntity, ga.EntityID, ga.KeyGroup)
	inv.RemoveByPrefix(ctx, WidgetPrefix)
	inv.RemoveByPrefix(ctx, LogoPathPrefix)
}

func userChanged(ctx context.Context, inv *hubcache.Invalidation, ev hubcache.Event) {
	u, ok := as[User](ev.Entity)
	if !ok {
		return
	}
	inv.Remove(ctx, UserByUsername, u.Username)
	inv.Remove(ctx, DevicesOwnByUser, u.ID)
	inv.RemoveByPrefix(ctx, MonitorsByUserPrefix, u.ID)
}

// as accepts both T and *T, since events may carry either.
func as[T any](e hubcache.Entity) (T, bool) {
	switch v := any(e).(type) {
	case T:
		return v, true
	case *T:
		if v != nil {
			return *v, true
		}
	}
	var zero T
	return zero, false
}
