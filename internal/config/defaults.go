package config

import "time"

const (
	rssScanner    = "rss"
	defaultUA     = "Mozilla/5.0 (compatible; GameRegMonitor/1.0; +https://example.org/bot)"
	googleNewsURL = "https://news.google.com/rss/search"
)

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Database: DatabaseConfig{Driver: "sqlite", DSN: "file:data/monitor.db?_pragma=busy_timeout(5000)"},
		Scheduler: SchedulerConfig{
			Interval: 24 * time.Hour,
			Timezone: defaultTimezone,
			location: tz,
		},
		Fetch: FetchConfig{
			Timeout:             30 * time.Second,
			MaxConcurrent:       5,
			MaxAgeDays:          90,
			GoogleNewsPerSecond: 2,
			UserAgent:           defaultUA,
			RecycledDateSources: []string{"Android Developers Blog"},
		},
		Translator: TranslatorConfig{
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-4o-mini",
			TargetLang:   "Simplified Chinese",
			SystemPrompt: "",
		},
		Notifications: NotificationConfig{
			Webhook: WebhookConfig{DigestLimit: 10},
		},
		Feeds: defaultFeeds(),
		GoogleNews: GoogleNewsConfig{
			Endpoint: googleNewsURL,
			Locales:  defaultLocales(),
			Queries:  defaultQueries(),
		},
	}
}

func defaultFeeds() []FeedConfig {
	return []FeedConfig{
		{Name: "GamesIndustry.biz", URL: "https://www.gamesindustry.biz/feed", Scanner: rssScanner, Lang: "en"},
		{Name: "Android Developers Blog", URL: "https://feeds.feedburner.com/blogspot/hsDu", Scanner: rssScanner, Lang: "en"},
		{Name: "FTC News", URL: "https://www.ftc.gov/feeds/press-release-consumer-protection.xml", Scanner: rssScanner, Lang: "en", Region: "North America"},
		{Name: "Federal Register (FTC)", URL: "https://www.federalregister.gov/articles/search.rss?conditions[agencies][]=federal-trade-commission", Scanner: rssScanner, Lang: "en", Region: "North America"},
		{Name: "UK Gov (Ofcom/Gaming)", URL: "https://www.gov.uk/search/news-and-communications.atom?keywords=gaming+online+safety&organisations%5B%5D=ofcom", Scanner: rssScanner, Lang: "en", Region: "Europe"},
		{Name: "UK Gov (Children Online Safety)", URL: "https://www.gov.uk/search/news-and-communications.atom?keywords=children+online+safety+age+verification", Scanner: rssScanner, Lang: "en", Region: "Europe"},
		{Name: "GDPR.eu News", URL: "https://gdpr.eu/feed/", Scanner: rssScanner, Lang: "en", Region: "Europe"},
		{Name: "EU Commission Digital", URL: "https://ec.europa.eu/newsroom/dae/rss.cfm", Scanner: rssScanner, Lang: "en", Region: "Europe"},
		{Name: "Australian eSafety Commissioner", URL: "https://www.esafety.gov.au/newsroom/rss.xml", Scanner: rssScanner, Lang: "en", Region: "Oceania"},
		{Name: "Canada Competition Bureau", URL: "https://www.canada.ca/en/competition-bureau/news.atom", Scanner: rssScanner, Lang: "en", Region: "North America"},
		{Name: "IMDA Singapore", URL: "https://www.imda.gov.sg/resources/news/RSS-Feeds", Scanner: rssScanner, Lang: "en", Region: "Southeast Asia"},
		{Name: "Pocket Gamer", URL: "https://www.pocketgamer.biz/feed/", Scanner: rssScanner, Lang: "en"},
		{Name: "GamesBeat", URL: "https://venturebeat.com/category/games/feed/", Scanner: rssScanner, Lang: "en"},
		{Name: "IAPP", URL: "https://iapp.org/news/rss/", Scanner: rssScanner, Lang: "en"},
	}
}

func defaultLocales() []LocaleConfig {
	return []LocaleConfig{
		{Key: "en_US", HL: "en-US", GL: "US", CEID: "US:en"},
		{Key: "en_UK", HL: "en-GB", GL: "GB", CEID: "GB:en"},
		{Key: "en_AU", HL: "en-AU", GL: "AU", CEID: "AU:en"},
		{Key: "en_SG", HL: "en", GL: "SG", CEID: "SG:en"},
		{Key: "en_ID", HL: "en", GL: "ID", CEID: "ID:en"},
		{Key: "ja_JP", HL: "ja", GL: "JP", CEID: "JP:ja"},
		{Key: "ko_KR", HL: "ko", GL: "KR", CEID: "KR:ko"},
		{Key: "vi_VN", HL: "vi", GL: "VN", CEID: "VN:vi"},
		{Key: "zh_TW", HL: "zh-TW", GL: "TW", CEID: "TW:zh-Hant"},
		{Key: "de_DE", HL: "de", GL: "DE", CEID: "DE:de"},
		{Key: "fr_FR", HL: "fr", GL: "FR", CEID: "FR:fr"},
		{Key: "pt_BR", HL: "pt-BR", GL: "BR", CEID: "BR:pt-419"},
		{Key: "es_MX", HL: "es", GL: "MX", CEID: "MX:es"},
	}
}

func defaultQueries() []QueryConfig {
	return []QueryConfig{
		{Locale: "en_US", Terms: []string{
			"loot box regulation",
			"gacha regulation law",
			"probability disclosure mobile game law",
			"COPPA game enforcement",
			"FTC children game fine",
			"game age verification law",
			"GDPR mobile game fine",
			"dark pattern game ban regulation",
			"game microtransaction consumer protection law",
			"Korea game industry promotion act amendment",
			"Vietnam game license local agent requirement",
			"Indonesia game rating IGAC requirement",
			"India online gaming regulation GST",
			"DMA app store game regulation",
		}},
		{Locale: "en_UK", Terms: []string{"UK online safety act game age verification", "EU loot box regulation"}},
		{Locale: "en_AU", Terms: []string{"Australia game loot box age verification"}},
		{Locale: "en_SG", Terms: []string{"Singapore game rating IMDA requirement"}},
		{Locale: "en_ID", Terms: []string{"Indonesia game publisher local registration"}},
		{Locale: "ja_JP", Terms: []string{"ガチャ規制 法案 改正", "景品表示法 ガチャ 処分"}},
		{Locale: "ko_KR", Terms: []string{"확률형 아이템 규제 법안", "게임산업진흥법 개정"}},
		{Locale: "vi_VN", Terms: []string{"nghị định trò chơi điện tử"}},
		{Locale: "zh_TW", Terms: []string{"遊戲法規 台灣", "未成年 遊戲 保護法 台灣"}},
		{Locale: "de_DE", Terms: []string{"Lootboxen Regulierung Deutschland"}},
		{Locale: "fr_FR", Terms: []string{"réglementation loot box jeu vidéo"}},
		{Locale: "pt_BR", Terms: []string{"lei loot box jogo online"}},
		{Locale: "es_MX", Terms: []string{"regulación loot box videojuegos ley"}},
	}
}
