package hub

import (
	"github.com/unkn0wn-root/hubcache"
)

// Namespace prefixes the hub's service-level keys. Generic entity keys use
// hubcache.AppNamespace.
const Namespace = "Hub"

// Service keys. Templates carrying a trailing group ({1}) sit under a prefix
// that ends with "." so removing owner 5 never touches owner 50.
var (
	SensorByID                  = hubcache.NewCacheKey("Hub.sensor.byid.{0}", "Hub.sensor.")
	SensorsByDeviceIDPrefix     = "Hub.sensor.bydeviceid.{0}."
	SensorsByDeviceID           = hubcache.NewCacheKey("Hub.sensor.bydeviceid.{0}.{1}", SensorsByDeviceIDPrefix, "Hub.sensor.")
	SensorBySystemName          = hubcache.NewCacheKey("Hub.sensor.bysystemname.{0}-{1}", "Hub.sensor.")
	DeviceByID                  = hubcache.NewCacheKey("Hub.device.byid.{0}", "Hub.device.")
	DeviceBySystemName          = hubcache.NewCacheKey("Hub.device.bysystemname.{0}", "Hub.device.")
	DevicesOwnByUser            = hubcache.NewCacheKey("Hub.device.ownbyuser.{0}", "Hub.device.")
	DevicesByUserPrefix         = "Hub.device.byuser.{0}."
	DevicesByUser               = hubcache.NewCacheKey("Hub.device.byuser.{0}.{1}", DevicesByUserPrefix, "Hub.device.")
	DeviceCommonLogPrefix       = "Hub.devicelog.bydevice.{0}."
	DeviceCommonLogs            = hubcache.NewCacheKey("Hub.devicelog.bydevice.{0}.{1}", DeviceCommonLogPrefix, "Hub.devicelog.")
	SensorRecordsByUserLanguage = hubcache.NewCacheKey("Hub.sensorrecord.byuserlanguage.{0}-{1}", "Hub.sensorrecord.")
	MonitorsByUserPrefix        = "Hub.monitor.byuser.{0}."
	MonitorsByUser              = hubcache.NewCacheKey("Hub.monitor.byuser.{0}.{1}", MonitorsByUserPrefix, "Hub.monitor.")
	SettingsAll                 = hubcache.NewCacheKey("Hub.setting.all", "Hub.setting.")
	SitemapPrefix               = "Hub.sitemap."
	Sitemap                     = hubcache.NewCacheKey("Hub.sitemap.{0}", SitemapPrefix)
	WidgetPrefix                = "Hub.widget."
	Widget                      = hubcache.NewCacheKey("Hub.widget.{0}-{1}", WidgetPrefix)
	LogoPathPrefix              = "Hub.logopath."
	LogoPath                    = hubcache.NewCacheKey("Hub.logopath.{0}", LogoPathPrefix)
	GenericAttributesByEntity   = hubcache.NewCacheKey("Hub.genericattribute.byentity.{0}-{1}", "Hub.genericattribute.")
	UserByUsername              = hubcache.NewCacheKey("Hub.user.byusername.{0}", "Hub.user.")
)

// NewKeyRegistry returns the generic templates of every hub entity.
func NewKeyRegistry() *hubcache.KeyRegistry {
	return hubcache.NewKeyRegistry(hubcache.AppNamespace,
		SensorName,
		DeviceName,
		SensorRecordName,
		MonitorName,
		SettingName,
		GenericAttributeName,
		UserName,
	)
}
