package server

import (
	"context"
	"strings"
	"time"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/GusSegura/ecommerce-full/internal/auth"
	"github.com/GusSegura/ecommerce-full/internal/config"
	"github.com/GusSegura/ecommerce-full/internal/datamodels/client"
	"github.com/GusSegura/ecommerce-full/internal/datamodels/product"
	"github.com/GusSegura/ecommerce-full/internal/infra/mq"
	"github.com/GusSegura/ecommerce-full/internal/infra/redis"
	"github.com/GusSegura/ecommerce-full/internal/middleware"
	"github.com/GusSegura/ecommerce-full/internal/repository/mysql"
	"github.com/GusSegura/ecommerce-full/internal/service"
)

// RegisterRoutes 注册前台 API 路由
func RegisterRoutes(app *iris.Application, cfg *config.Config) {
	// 初始化基础设施
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)
	mqConn := mq.Init(&cfg.RabbitMQ)

	// 仓储与服务
	userRepo := mysql.NewUserRepository(db)
	clientRepo := mysql.NewClientRepository(db)
	productRepo := mysql.NewProductRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	addressRepo := mysql.NewAddressRepository(db)
	paymentRepo := mysql.NewPaymentRepository(db)

	userSvc := service.NewUserService(userRepo, &cfg.JWT)
	clientSvc := service.NewClientService(clientRepo)
	productSvc := service.NewProductService(productRepo)
	cartSvc := service.NewCartService(cartRepo, productRepo)
	orderSvc := service.NewOrderService(orderRepo)
	checkoutSvc := service.NewCheckoutService(cartSvc, addressRepo, paymentRepo, orderRepo, redisClient, mqConn, &cfg.Checkout)

	storeTimeout := time.Duration(cfg.Checkout.StoreTimeoutSeconds) * time.Second
	ring := auth.NewRing(cfg.Auth.Nodes, cfg.Auth.HashReplicas)
	tokenCache := auth.NewTokenCache(redisClient, ring, time.Duration(cfg.Auth.TokenCacheTTLSeconds)*time.Second)

	api := app.Party("/api")

	// 健康检查
	api.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{
			"code": 0,
			"msg":  "ok",
		})
	})

	api.Post("/register", func(ctx iris.Context) {
		var req struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()
		u, err := userSvc.Register(reqCtx, req.Username, req.Email, req.Password)
		if err != nil {
			writeError(ctx, err)
			return
		}
		writeData(ctx, u)
	})

	api.Post("/login", func(ctx iris.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()
		token, err := userSvc.Login(reqCtx, req.Username, req.Password)
		if err != nil {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"token": token}})
	})

	// 需要登录的接口
	authAPI := api.Party("/", AuthMiddleware(&cfg.JWT, tokenCache))

	// 商品列表（支持按分类筛选和关键字搜索）
	authAPI.Get("/products", func(ctx iris.Context) {
		category := ctx.URLParam("category")
		keyword := ctx.URLParam("q")
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()

		var list []*product.Product
		var err error
		if category != "" {
			list, err = productSvc.ListByCategory(reqCtx, category)
		} else {
			list, err = productSvc.ListOnline(reqCtx)
		}
		if err != nil {
			writeError(ctx, err)
			return
		}

		if keyword != "" {
			kw := strings.ToLower(keyword)
			filtered := make([]*product.Product, 0, len(list))
			for _, p := range list {
				if strings.Contains(strings.ToLower(p.Name), kw) {
					filtered = append(filtered, p)
				}
			}
			list = filtered
		}

		writeData(ctx, list)
	})

	authAPI.Get("/products/{id:int64}", func(ctx iris.Context) {
		pid, _ := ctx.Params().GetInt64("id")
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()
		p, err := productSvc.GetByID(reqCtx, pid)
		if err != nil {
			writeError(ctx, err)
			return
		}
		writeData(ctx, p)
	})

	// ---------- 客户档案 ----------

	authAPI.Get("/clients/my", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()
		c, err := clientSvc.GetByUser(reqCtx, userID)
		if err != nil {
			writeError(ctx, err)
			return
		}
		writeData(ctx, c)
	})

	authAPI.Post("/clients/my", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		var c client.Client
		if err := ctx.ReadJSON(&c); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		c.UserID = userID
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()
		if err := clientSvc.Create(reqCtx, &c); err != nil {
			writeError(ctx, err)
			return
		}
		writeData(ctx, c)
	})

	// ---------- 购物车 ----------

	authAPI.Get("/cart/my", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()
		c, err := cartSvc.GetCart(reqCtx, userID)
		if err != nil {
			writeError(ctx, err)
			return
		}
		writeData(ctx, c)
	})

	authAPI.Post("/cart/my/add", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		var req struct {
			ProductID int64 `json:"productId"`
			Quantity  int64 `json:"quantity"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()
		c, err := cartSvc.AddItem(reqCtx, userID, req.ProductID, req.Quantity)
		if err != nil {
			writeError(ctx, err)
			return
		}
		writeData(ctx, c)
	})

	authAPI.Patch("/cart/my/update/{productId:int64}", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		pid, _ := ctx.Params().GetInt64("productId")
		var req struct {
			Quantity int64 `json:"quantity"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()
		c, err := cartSvc.UpdateQuantity(reqCtx, userID, pid, req.Quantity)
		if err != nil {
			writeError(ctx, err)
			return
		}
		writeData(ctx, c)
	})

	authAPI.Delete("/cart/my/remove/{productId:int64}", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		pid, _ := ctx.Params().GetInt64("productId")
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()
		c, err := cartSvc.RemoveItem(reqCtx, userID, pid)
		if err != nil {
			writeError(ctx, err)
			return
		}
		writeData(ctx, c)
	})

	authAPI.Delete("/cart/my/clear", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()
		if err := cartSvc.ClearCart(reqCtx, userID); err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "cart cleared"})
	})

	// ---------- 结算 ----------

	authAPI.Post("/checkout", middleware.CheckoutRateLimit(), func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		var form service.CheckoutForm
		if err := ctx.ReadJSON(&form); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()
		o, err := checkoutSvc.Checkout(reqCtx, userID, &form)
		if err != nil {
			zap.L().Warn("checkout rejected", zap.Int64("user_id", userID), zap.Error(err))
			writeError(ctx, err)
			return
		}
		writeData(ctx, o)
	})

	// ---------- 订单 ----------

	authAPI.Get("/orders", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()
		list, err := orderSvc.ListByUser(reqCtx, userID)
		if err != nil {
			writeError(ctx, err)
			return
		}
		writeData(ctx, list)
	})

	authAPI.Get("/orders/{id:int64}", func(ctx iris.Context) {
		userID := ctx.Values().GetInt64Default("user_id", 0)
		oid, _ := ctx.Params().GetInt64("id")
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()
		o, err := orderSvc.GetByID(reqCtx, oid)
		if err != nil {
			writeError(ctx, err)
			return
		}
		// 只能查看自己的订单
		if o.UserID != userID {
			ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": "order not found"})
			return
		}
		writeData(ctx, o)
	})
}
