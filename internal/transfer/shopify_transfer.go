package transfer

type ShopifyArticle struct {
	Title           string `json:"title"`
	Author          string `json:"author,omitempty"`
	BodyHTML        string `json:"body_html"`
	Tags            string `json:"tags,omitempty"`
	SummaryHTML     string `json:"summary_html,omitempty"`
	Published       bool   `json:"published"`
	PublishedAt     string `json:"published_at,omitempty"`
	MetafieldsGlobalDescriptionTag string `json:"metafields_global_description_tag,omitempty"`
}

type ShopifyArticleRequest struct {
	Article ShopifyArticle `json:"article"`
}

type ShopifyArticleResponse struct {
	Article struct {
		ID     int64  `json:"id"`
		Handle string `json:"handle"`
		BlogID int64  `json:"blog_id"`
	} `json:"article"`
}

type ShopifyPage struct {
	Title    string `json:"title"`
	BodyHTML string `json:"body_html"`
	Published bool  `json:"published"`
	MetafieldsGlobalDescriptionTag string `json:"metafields_global_description_tag,omitempty"`
}

type ShopifyPageRequest struct {
	Page ShopifyPage `json:"page"`
}

type ShopifyPageResponse struct {
	Page struct {
		ID     int64  `json:"id"`
		Handle string `json:"handle"`
	} `json:"page"`
}

type ShopifyShopResponse struct {
	Shop struct {
		ID           int64  `json:"id"`
		Name         string `json:"name"`
		Domain       string `json:"domain"`
		IANATimezone string `json:"iana_timezone"`
	} `json:"shop"`
}

type ShopifyBlogsResponse struct {
	Blogs []struct {
		ID     int64  `json:"id"`
		Handle string `json:"handle"`
		Title  string `json:"title"`
	} `json:"blogs"`
}

type ShopifyErrorResponse struct {
	Errors any `json:"errors"`
}
