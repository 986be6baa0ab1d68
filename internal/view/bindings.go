package view

import (
	"context"
	"errors"
	"strconv"
	"time"

	"concerthub-api/internal/fragment"
	"concerthub-api/internal/model"
	"concerthub-api/internal/service"
)

// Binding parameter keys.
const (
	ParamSection = "section"
	ParamQuery   = "q"
	ParamSession = "session"
	ParamID      = "id"
)

type menuItem struct {
	Section string
	Label   string
	Icon    string
	Active  bool
}

var menu = []menuItem{
	{Section: SectionHome, Label: "Home", Icon: "fa-home"},
	{Section: SectionWishlist, Label: "Wishlist", Icon: "fa-heart"},
	{Section: SectionOrders, Label: "My Orders", Icon: "fa-ticket-alt"},
	{Section: SectionSettings, Label: "Settings", Icon: "fa-cog"},
}

type sidebarData struct {
	Menu          []menuItem
	WishlistCount int
	UserName      string
}

type headerData struct {
	Title         string
	SearchVisible bool
	Query         string
	Badge         model.Badge
	Notifications []model.Notification
}

type homeData struct {
	Query    string
	Concerts []model.Item
	Empty    bool
}

type wishlistData struct {
	Query   string
	Entries []model.WishlistEntry
	Empty   bool
}

type ordersData struct {
	Query  string
	Orders []model.Order
	Empty  bool
}

type settingsData struct {
	Settings model.UserSettings
}

type checkoutData struct {
	Checkout   *service.Checkout
	Quantities []int
}

// Register installs the template functions and the post-mount bindings
// of every fragment, all reading from st.
func Register(l *fragment.Loader, st *service.State) {
	l.AddFunc("firstImage", firstImage)
	l.AddFunc("notificationIcon", notificationIcon)
	l.AddFunc("timestamp", timestamp)

	l.Bind("components/sidebar", func(ctx context.Context, p fragment.Params) (any, error) {
		items := make([]menuItem, len(menu))
		for i, m := range menu {
			m.Active = m.Section == p[ParamSection]
			items[i] = m
		}
		return sidebarData{
			Menu:          items,
			WishlistCount: st.Wishlist.Count(),
			UserName:      st.Settings.Get().DisplayName(),
		}, nil
	})

	l.Bind("components/header", func(ctx context.Context, p fragment.Params) (any, error) {
		section := p[ParamSection]
		return headerData{
			Title:         Title(section),
			SearchVisible: SearchVisible(section),
			Query:         p[ParamQuery],
			Badge:         st.Notifications.Badge(),
			Notifications: st.Notifications.List(),
		}, nil
	})

	l.Bind("section/home", func(ctx context.Context, p fragment.Params) (any, error) {
		concerts := service.SearchItems(st.Catalog.All(), p[ParamQuery])
		return homeData{Query: p[ParamQuery], Concerts: concerts, Empty: len(concerts) == 0}, nil
	})

	l.Bind("section/wishlist", func(ctx context.Context, p fragment.Params) (any, error) {
		entries := service.SearchWishlist(st.Wishlist.List(), p[ParamQuery])
		return wishlistData{Query: p[ParamQuery], Entries: entries, Empty: len(entries) == 0}, nil
	})

	l.Bind("section/orders", func(ctx context.Context, p fragment.Params) (any, error) {
		orders := service.SearchOrders(st.Orders.List(), p[ParamQuery])
		return ordersData{Query: p[ParamQuery], Orders: orders, Empty: len(orders) == 0}, nil
	})

	l.Bind("section/settings", func(ctx context.Context, p fragment.Params) (any, error) {
		return settingsData{Settings: st.Settings.Get()}, nil
	})

	l.Bind("section/checkout", func(ctx context.Context, p fragment.Params) (any, error) {
		id, _ := strconv.Atoi(p[ParamID])
		c, err := st.Checkout.Begin(ctx, p[ParamSession], id)
		if err != nil && !errors.Is(err, service.ErrNotFound) {
			return nil, err
		}
		return checkoutData{Checkout: c, Quantities: quantities()}, nil
	})
}

func quantities() []int {
	q := make([]int, 0, service.MaxQuantity-service.MinQuantity+1)
	for i := service.MinQuantity; i <= service.MaxQuantity; i++ {
		q = append(q, i)
	}
	return q
}

func firstImage(images []string) string {
	if len(images) == 0 {
		return ""
	}
	return images[0]
}

func notificationIcon(t model.NotificationType) string {
	switch t {
	case model.NotificationWishlistAdd:
		return "fas fa-heart text-red-500"
	case model.NotificationWishlistRemove:
		return "far fa-heart text-gray-500"
	case model.NotificationCheckoutSuccess:
		return "fas fa-check-circle text-green-500"
	case model.NotificationCheckoutError:
		return "fas fa-exclamation-circle text-red-500"
	default:
		return "fas fa-bell text-blue-500"
	}
}

func timestamp(t time.Time) string {
	return t.Local().Format("02 Jan 2006 15:04")
}
