package serviceInfo

import "fmt"

type ServiceInfo string

var (
	SERVICE_NAME        ServiceInfo = "Haplo Variant Block Service"
	SERVICE_WELCOME     ServiceInfo = "Welcome to the Haplo variant block API!"
	SERVICE_DESCRIPTION ServiceInfo = "Variant call buffering and block processing service."
	SERVICE_CONTACT     ServiceInfo = "mailto:support@haplo.local" //TODO: refactor

	SERVICE_ARTIFACT    ServiceInfo = "haplo"
	SERVICE_VERSION     ServiceInfo = "0.0.1"
	SERVICE_TYPE_NO_VER ServiceInfo = ServiceInfo(fmt.Sprintf("org.haplo:%s", SERVICE_ARTIFACT))
	SERVICE_ID          ServiceInfo = SERVICE_TYPE_NO_VER
	SERVICE_TYPE        ServiceInfo = ServiceInfo(fmt.Sprintf("%s:%s", SERVICE_TYPE_NO_VER, SERVICE_VERSION))
)
