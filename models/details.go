package models

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Video struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

type Review struct {
	ID            string `json:"id"`
	Author        string `json:"author"`
	AuthorDetails struct {
		Name       string   `json:"name"`
		Username   string   `json:"username"`
		AvatarPath string   `json:"avatar_path,omitempty"`
		Rating     *float64 `json:"rating"`
	} `json:"author_details"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	URL       string `json:"url"`
}

type WatchProvider struct {
	LogoPath        string `json:"logo_path"`
	ProviderID      int    `json:"provider_id"`
	ProviderName    string `json:"provider_name"`
	DisplayPriority int    `json:"display_priority"`
}

// WatchProviders lists where a title can be streamed, rented or bought in
// one country.
type WatchProviders struct {
	Link     string          `json:"link,omitempty"`
	Flatrate []WatchProvider `json:"flatrate,omitempty"`
	Rent     []WatchProvider `json:"rent,omitempty"`
	Buy      []WatchProvider `json:"buy,omitempty"`
}

type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path,omitempty"`
	Order       int    `json:"order"`
}

type CrewMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job"`
	Department  string `json:"department"`
	ProfilePath string `json:"profile_path,omitempty"`
}

type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Title holds the detail fields of a movie or tv show.
type Title struct {
	CatalogItem
	Genres           []Genre `json:"genres,omitempty"`
	Runtime          int     `json:"runtime,omitempty"`
	NumberOfSeasons  int     `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes int     `json:"number_of_episodes,omitempty"`
	Status           string  `json:"status,omitempty"`
	Tagline          string  `json:"tagline,omitempty"`
	Homepage         string  `json:"homepage,omitempty"`
}

// TitleDetails pairs a title with its credits.
type TitleDetails struct {
	Title Title        `json:"title"`
	Cast  []CastMember `json:"cast"`
	Crew  []CrewMember `json:"crew"`
}

type Person struct {
	ID                 int     `json:"id"`
	Name               string  `json:"name"`
	ProfilePath        string  `json:"profile_path,omitempty"`
	KnownForDepartment string  `json:"known_for_department,omitempty"`
	Biography          string  `json:"biography,omitempty"`
	Birthday           string  `json:"birthday,omitempty"`
	Deathday           string  `json:"deathday,omitempty"`
	PlaceOfBirth       string  `json:"place_of_birth,omitempty"`
	Popularity         float64 `json:"popularity,omitempty"`
}

type CombinedCredits struct {
	Cast []CatalogItem `json:"cast"`
	Crew []CatalogItem `json:"crew"`
}

type ExternalIDs struct {
	IMDbID      string `json:"imdb_id,omitempty"`
	InstagramID string `json:"instagram_id,omitempty"`
	TwitterID   string `json:"twitter_id,omitempty"`
	FacebookID  string `json:"facebook_id,omitempty"`
}

// PersonDetails bundles the three person endpoints.
type PersonDetails struct {
	Person          Person          `json:"person"`
	CombinedCredits CombinedCredits `json:"combined_credits"`
	ExternalIDs     ExternalIDs     `json:"external_ids"`
}

type SocialLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Icon string `json:"icon"`
}
