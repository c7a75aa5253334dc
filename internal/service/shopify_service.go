package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	config "github.com/blogpilot/blogpilot/configs"
	"github.com/blogpilot/blogpilot/internal/models"
	"github.com/blogpilot/blogpilot/internal/repository"
	"github.com/blogpilot/blogpilot/internal/transfer"
	"github.com/blogpilot/blogpilot/pkg/utils"
	"golang.org/x/oauth2"
)

// StoreGateway is the commerce platform surface the scheduler publishes
// through. Implementations must carry a timeout on every call.
type StoreGateway interface {
	CreateArticle(ctx context.Context, store *models.Store, content *models.GeneratedContent, finalHTML string, publish bool) (*models.PublicationRecord, error)
	CreatePage(ctx context.Context, store *models.Store, content *models.GeneratedContent, finalHTML string, publish bool) (*models.PublicationRecord, error)
	GetShopTimezone(ctx context.Context, store *models.Store) (string, error)
}

type ShopifyService interface {
	StoreGateway
	GetAuthURL(shopDomain, state string) string
	Callback(ctx context.Context, shopDomain, code string, userID int64) (*models.Store, error)
	List(ctx context.Context, userID int64) ([]*models.Store, error)
	Delete(ctx context.Context, userID, storeID int64) error
}

type shopifyService struct {
	cfg    config.Config
	sr     repository.StoreRepository
	client *http.Client
}

func NewShopifyService(cfg config.Config, sr repository.StoreRepository) ShopifyService {
	return &shopifyService{
		cfg:    cfg,
		sr:     sr,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *shopifyService) oauthConfig(shopDomain string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.ShopifyClientID,
		ClientSecret: s.cfg.ShopifyClientSecret,
		RedirectURL:  s.cfg.ShopifyRedirectURI,
		Scopes:       []string{"read_content", "write_content", "read_products"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  fmt.Sprintf("https://%s/admin/oauth/authorize", shopDomain),
			TokenURL: fmt.Sprintf("https://%s/admin/oauth/access_token", shopDomain),
		},
	}
}

func (s *shopifyService) GetAuthURL(shopDomain, state string) string {
	return s.oauthConfig(shopDomain).AuthCodeURL(state)
}

func (s *shopifyService) Callback(ctx context.Context, shopDomain, code string, userID int64) (*models.Store, error) {
	if code == "" || shopDomain == "" {
		err := errors.New("code or shop is empty")
		slog.Info(err.Error())
		return nil, err
	}

	token, err := s.oauthConfig(shopDomain).Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	shopInfo, err := s.fetchShop(ctx, shopDomain, token.AccessToken)
	if err != nil {
		return nil, err
	}

	blogID, err := s.fetchDefaultBlog(ctx, shopDomain, token.AccessToken)
	if err != nil {
		slog.Warn("unable to list blogs for store", "shop", shopDomain, "error", err.Error())
	}

	encryptedToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	store := &models.Store{
		UserID:      userID,
		ShopDomain:  shopDomain,
		ShopName:    shopInfo.Shop.Name,
		BlogID:      blogID,
		AccessToken: encryptedToken,
		Timezone:    shopInfo.Shop.IANATimezone,
		Status:      "active",
	}

	storeID, err := s.sr.Create(ctx, store)
	if err != nil {
		return nil, err
	}
	store.ID = storeID

	return store, nil
}

func (s *shopifyService) List(ctx context.Context, userID int64) ([]*models.Store, error) {
	if userID == 0 {
		err := errors.New("UserID is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	stores, err := s.sr.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Error getting stores")
	}
	return stores, nil
}

func (s *shopifyService) Delete(ctx context.Context, userID, storeID int64) error {
	isValid, err := s.sr.CheckByUserID(ctx, storeID, userID)
	if err != nil {
		return err
	}
	if !isValid {
		err = errors.New("Store doesn't exist")
		slog.Info(err.Error())
		return err
	}

	return s.sr.Remove(ctx, storeID)
}

func (s *shopifyService) CreateArticle(ctx context.Context, store *models.Store, content *models.GeneratedContent, finalHTML string, publish bool) (*models.PublicationRecord, error) {
	payload := transfer.ShopifyArticleRequest{
		Article: transfer.ShopifyArticle{
			Title:                          content.Title,
			BodyHTML:                       finalHTML,
			Tags:                           strings.Join(content.Tags, ", "),
			Published:                      publish,
			MetafieldsGlobalDescriptionTag: content.MetaDescription,
		},
	}

	path := fmt.Sprintf("/blogs/%s/articles.json", store.BlogID)
	body, err := s.apiRequest(ctx, store, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}

	var resp transfer.ShopifyArticleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &models.PublicationRecord{
		ContentID:  content.ID,
		ExternalID: fmt.Sprintf("%d", resp.Article.ID),
		Handle:     resp.Article.Handle,
		URL:        fmt.Sprintf("https://%s/blogs/news/%s", store.ShopDomain, resp.Article.Handle),
	}, nil
}

func (s *shopifyService) CreatePage(ctx context.Context, store *models.Store, content *models.GeneratedContent, finalHTML string, publish bool) (*models.PublicationRecord, error) {
	payload := transfer.ShopifyPageRequest{
		Page: transfer.ShopifyPage{
			Title:                          content.Title,
			BodyHTML:                       finalHTML,
			Published:                      publish,
			MetafieldsGlobalDescriptionTag: content.MetaDescription,
		},
	}

	body, err := s.apiRequest(ctx, store, http.MethodPost, "/pages.json", payload)
	if err != nil {
		return nil, err
	}

	var resp transfer.ShopifyPageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &models.PublicationRecord{
		ContentID:  content.ID,
		ExternalID: fmt.Sprintf("%d", resp.Page.ID),
		Handle:     resp.Page.Handle,
		URL:        fmt.Sprintf("https://%s/pages/%s", store.ShopDomain, resp.Page.Handle),
	}, nil
}

func (s *shopifyService) GetShopTimezone(ctx context.Context, store *models.Store) (string, error) {
	token, err := utils.Decrypt(store.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return "", err
	}

	shopInfo, err := s.fetchShop(ctx, store.ShopDomain, token)
	if err != nil {
		return "", err
	}
	return shopInfo.Shop.IANATimezone, nil
}

func (s *shopifyService) fetchShop(ctx context.Context, shopDomain, accessToken string) (*transfer.ShopifyShopResponse, error) {
	body, err := s.rawRequest(ctx, shopDomain, accessToken, http.MethodGet, "/shop.json", nil)
	if err != nil {
		return nil, err
	}

	var resp transfer.ShopifyShopResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &resp, nil
}

func (s *shopifyService) fetchDefaultBlog(ctx context.Context, shopDomain, accessToken string) (string, error) {
	body, err := s.rawRequest(ctx, shopDomain, accessToken, http.MethodGet, "/blogs.json", nil)
	if err != nil {
		return "", err
	}

	var resp transfer.ShopifyBlogsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", err
	}
	if len(resp.Blogs) == 0 {
		return "", errors.New("store has no blogs")
	}
	return fmt.Sprintf("%d", resp.Blogs[0].ID), nil
}

func (s *shopifyService) apiRequest(ctx context.Context, store *models.Store, method, path string, payload any) ([]byte, error) {
	token, err := utils.Decrypt(store.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, err
	}
	return s.rawRequest(ctx, store.ShopDomain, token, method, path, payload)
}

func (s *shopifyService) rawRequest(ctx context.Context, shopDomain, accessToken, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	url := fmt.Sprintf("https://%s/admin/api/%s%s", shopDomain, s.cfg.ShopifyAPIVersion, path)
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Shopify-Access-Token", accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, &models.PublishError{StatusCode: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Info(fmt.Sprintf("shopify request failed: %d %s", resp.StatusCode, string(body)))
		return nil, &models.PublishError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	return body, nil
}
