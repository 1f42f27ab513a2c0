package upstream

// Fixed browser-shaped request templates. The upstream rejects requests that
// do not look like its own dashboard, so the header sets mirror it verbatim.

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/138.0.0.0 Safari/537.36"

// LoginHeaders is the header template for the login endpoint.
func LoginHeaders(baseURL string) map[string]string {
	return map[string]string{
		"accept":             "*/*",
		"accept-language":    "en-US,en;q=0.9",
		"content-type":       "application/json",
		"origin":             baseURL,
		"priority":           "u=1, i",
		"referer":            baseURL + "/",
		"sec-ch-ua":          `"Not)A;Brand";v="8", "Chromium";v="138", "Google Chrome";v="138"`,
		"sec-ch-ua-mobile":   "?0",
		"sec-ch-ua-platform": `"Windows"`,
		"sec-fetch-dest":     "empty",
		"sec-fetch-mode":     "cors",
		"sec-fetch-site":     "same-origin",
		"user-agent":         browserUA,
	}
}

// BrowserCookies is the cookie template accompanying the login request.
func BrowserCookies() map[string]string {
	return map[string]string{
		"_ga":                "GA1.1.290468168.1753911312",
		"TawkConnectionTime": "0",
	}
}

// ProfileHeaders is the header template for profile-backed API calls.
// The session token travels in the sessionauth field.
func ProfileHeaders(baseURL, sessionToken string) map[string]string {
	h := LoginHeaders(baseURL)
	h["referer"] = baseURL + "/user_report_1"
	h["sessionauth"] = sessionToken
	h["x-requested-with"] = "XMLHttpRequest"
	return h
}

// AnonymousHeaders is the default template used when no logged-in active
// profile is available.
func AnonymousHeaders(baseURL string) map[string]string {
	return map[string]string{
		"accept":          "*/*",
		"accept-language": "en-US,en;q=0.5",
		"content-type":    "application/json",
		"origin":          baseURL,
		"user-agent":      browserUA,
	}
}

// DefaultRange is the number range used when none is supplied.
const DefaultRange = "24996218XXXX"

// DefaultFetchConfig builds the anonymous number-fetch request template.
// An empty rangeValue falls back to DefaultRange.
func DefaultFetchConfig(baseURL, rangeValue string) RequestConfig {
	if rangeValue == "" {
		rangeValue = DefaultRange
	}
	headers := AnonymousHeaders(baseURL)
	headers["referer"] = baseURL + "/user_report_1?getfrange=" + rangeValue
	return RequestConfig{
		URL:     baseURL + fetchNumPath,
		Headers: headers,
		Cookies: map[string]string{},
		Data: map[string]any{
			"app":         "null",
			"carrier":     "null",
			"numberRange": rangeValue,
			"national":    false,
			"removePlus":  false,
		},
	}
}

// ApplyRange overrides the number range of an existing request template,
// keeping the referer query in step.
func ApplyRange(cfg RequestConfig, baseURL, rangeValue string) RequestConfig {
	data := make(map[string]any, len(cfg.Data))
	for k, v := range cfg.Data {
		data[k] = v
	}
	data["numberRange"] = rangeValue
	cfg.Data = data

	cfg.Headers = mergeHeaders(cfg.Headers, map[string]string{
		"referer": baseURL + "/user_report_1?getfrange=" + rangeValue,
	})
	return cfg
}
