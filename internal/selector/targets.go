package selector

// Ranked candidate lists for every logical target the adapters touch.
// Rank 0 is the currently observed DOM; later entries are progressively
// looser shapes that survived past site redesigns.
var (
	// Search Console performance chart container.
	GSCChart = Target{Name: "gsc-chart", Candidates: []string{
		"#data-container > div > div.VfPpkd-WsjYwc.VfPpkd-WsjYwc-OWXEXe-INsAgc.KC1dQ.Usd1Ac.AaN0Dd.YJ1SEc.pTyMIf > c-wiz",
		"c-wiz[data-node-index]",
		".KC1dQ",
		"#data-container div[jscontroller]",
		"#analytics-table",
	}}

	// Column-header button that re-sorts the query table.
	GSCPivot = Target{Name: "gsc-pivot", Candidates: []string{
		`#\31  > div > c-wiz > div > div > div:nth-child(2) > div:nth-child(2) > div > table > thead > tr > th:nth-child(3) > span > button`,
		"table thead th:nth-child(3) button",
		"table thead button",
	}}

	// Chart shown after the pivot click.
	GSCChartPivoted = Target{Name: "gsc-chart-pivoted", Candidates: []string{
		"#data-container > div > div:nth-child(2) > div",
		"#data-container div[jscontroller]",
	}}

	// Body of the top-queries table.
	GSCTable = Target{Name: "gsc-table", Candidates: []string{
		`#\31  > div > c-wiz > div > div > div:nth-child(2) > div:nth-child(2) > div > table > tbody`,
		"table tbody",
	}}

	// Analytics report container, a JS-heavy SPA that renders late.
	AnalyticsReport = Target{Name: "analytics-report", Candidates: []string{
		"#report-canvas",
		".analysis-area",
		"main [data-report-id]",
		"main",
	}}

	// Cookie/consent interstitial accept button.
	ConsentButton = Target{Name: "consent-button", Candidates: []string{
		"#L2AGLb",
		"button[aria-label='Accept all']",
		"form[action*='consent'] button",
		"div[role='dialog'] button:first-of-type",
	}}

	// Search engine home page query input.
	SearchBox = Target{Name: "search-box", Candidates: []string{
		"textarea[name='q']",
		"input[name='q']",
		"[role='combobox']",
	}}

	// Autocomplete dropdown once the query is typed.
	SuggestionList = Target{Name: "suggestion-list", Candidates: []string{
		"ul[role='listbox']",
		".erkvQe",
		".UUbT9",
	}}

	// "People also ask" block on the results page.
	RelatedQuestions = Target{Name: "related-questions", Candidates: []string{
		"div[jsname='N760b']",
		".related-question-pair",
		"div[data-initq]",
	}}

	// Related-searches block at the bottom of the results page.
	RelatedSearches = Target{Name: "related-searches", Candidates: []string{
		"#botstuff a > div",
		"#brs a",
		"a[data-xbu]",
	}}

	// Keyword tool result rows (table or grid rendering).
	MetricsRows = Target{Name: "metrics-rows", Candidates: []string{
		".sm-table-layout__row",
		"[role='row']",
		"tr[data-id]",
		"tr",
	}}

	// Keyword tool sidebar group list.
	MetricsSidebar = Target{Name: "metrics-sidebar", Candidates: []string{
		".sm-group-content",
		"[data-testid='group-row']",
	}}

	// Optional account picker shown after the keyword tool login.
	MetricsAccountPicker = Target{Name: "metrics-account-picker", Candidates: []string{
		".q-bar button",
		"button.q-btn",
	}}

	// Google login flow fields.
	LoginEmail = Target{Name: "login-email", Candidates: []string{
		"input[type='email']",
		"#identifierId",
	}}
	LoginEmailNext = Target{Name: "login-email-next", Candidates: []string{
		"#identifierNext button",
		"#identifierNext",
	}}
	LoginPassword = Target{Name: "login-password", Candidates: []string{
		"input[type='password']",
		"#password input",
	}}
	LoginPasswordNext = Target{Name: "login-password-next", Candidates: []string{
		"#passwordNext button",
		"#passwordNext",
	}}
)
