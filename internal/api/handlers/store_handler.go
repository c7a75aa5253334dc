package handlers

import (
	"fmt"
	"log"
	"log/slog"
	"strconv"

	config "github.com/blogpilot/blogpilot/configs"
	"github.com/blogpilot/blogpilot/internal/service"
	"github.com/blogpilot/blogpilot/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type StoreHandler struct {
	s   service.ShopifyService
	cfg config.Config
}

func NewStoreHandler(service service.ShopifyService, cfg config.Config) *StoreHandler {
	return &StoreHandler{s: service, cfg: cfg}
}

func (h *StoreHandler) ConnectStore(c *fiber.Ctx) error {
	shop := c.Query("shop")
	if shop == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing shop domain",
		})
	}

	authURL := h.s.GetAuthURL(shop, c.Query("state"))
	return c.Redirect(authURL)
}

func (h *StoreHandler) CallbackHandler(c *fiber.Ctx) error {
	code := c.Query("code")
	shop := c.Query("shop")
	state := c.Query("state")

	claims, err := utils.ValidateToken(h.cfg.SecretKey, state)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to validate user",
		})
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to validate user",
		})
	}

	_, err = h.s.Callback(c.Context(), shop, code, userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	redirectURL := fmt.Sprintf("%s/dashboard/stores", h.cfg.FrontendURL)
	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}

func (h *StoreHandler) ListStores(c *fiber.Ctx) error {
	userID := GetUserID(c)

	storeList, err := h.s.List(c.Context(), userID)
	if err != nil {
		log.Println(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch stores",
		})
	}

	return c.Status(fiber.StatusOK).JSON(storeList)
}

func (h *StoreHandler) DeleteStore(c *fiber.Ctx) error {
	userID := GetUserID(c)
	storeId := c.QueryInt("id", 0)

	err := h.s.Delete(c.Context(), userID, int64(storeId))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to delete store",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
