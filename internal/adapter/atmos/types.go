package atmos

var (
	baseURL = "https://www.atmosenergy.com"
)

const (
	loginFormPath    = "/accountcenter/logon/login.html"
	authenticatePath = "/accountcenter/logon/authenticate.html"
	logoutPath       = "/accountcenter/logout/index.html"
	downloadPath     = "/accountcenter/usagehistory/dailyUsageDownload.html"

	// MMDDYYYYHH:MM:SS, appended to download URLs so the portal never serves
	// a cached export.
	cacheBusterLayout = "0102200615:04:05"

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

const (
	ContentTypeXLS  = "application/vnd.ms-excel"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var defaultContentTypes = []string{ContentTypeXLS, ContentTypeXLSX}
