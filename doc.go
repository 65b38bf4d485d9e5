// Package hubcache builds cache keys for the monitoring hub and removes them
// when entities change.
//
// Components:
//   - CacheKey: a template ("App.sensor.byid.{0}") plus removal prefixes and an
//     optional cache time.
//   - EntityKeys / KeyRegistry: the by-id, by-ids, all and by-dynamic-filter
//     templates of one entity type in one application namespace ("App", "Dash").
//   - KeyService: prepares keys from templates. Arguments are normalized so that
//     equal requests share a key: id sets are sorted and hashed, filters are
//     canonically encoded and hashed, entities collapse to their id.
//   - Manager / Cache[V]: the static cache manager over a byte Provider
//     (ristretto, bigcache, redis) with prefix removal and per-key generations.
//   - Dispatcher: routes Insert/Update/Delete events to per-entity consumers.
//
// Keys:
//
//	single:<ns>:<prepared key>
//
// Read path:
//
//	key, err := keys.PrepareKeyForDefaultCache(sensorKeys.ByID, id)
//	s, err := sensors.Get(ctx, key, func(ctx context.Context) (Sensor, error) {
//	    return repo.SensorByID(ctx, id)
//	})
//
// Write path:
//
//	_ = repo.UpdateSensor(ctx, s)
//	res := dispatcher.Publish(ctx, hubcache.NewEvent(hubcache.Update, s, actor))
package hubcache
