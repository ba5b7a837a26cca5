package server

import (
	"context"
	"strconv"
	"time"

	"github.com/kataras/iris/v12"

	"github.com/GusSegura/ecommerce-full/internal/auth"
	"github.com/GusSegura/ecommerce-full/internal/config"
	"github.com/GusSegura/ecommerce-full/internal/datamodels/product"
	"github.com/GusSegura/ecommerce-full/internal/infra/redis"
	"github.com/GusSegura/ecommerce-full/internal/repository/mysql"
	"github.com/GusSegura/ecommerce-full/internal/service"
)

// RegisterAdminRoutes 注册后台管理端的 HTTP 路由。
// 端口通常是 8081，与前台服务分离，全部接口要求 admin 角色。
func RegisterAdminRoutes(app *iris.Application, cfg *config.Config) {
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)

	productRepo := mysql.NewProductRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	clientRepo := mysql.NewClientRepository(db)

	productSvc := service.NewProductService(productRepo)
	orderSvc := service.NewOrderService(orderRepo)
	clientSvc := service.NewClientService(clientRepo)

	storeTimeout := time.Duration(cfg.Checkout.StoreTimeoutSeconds) * time.Second
	ring := auth.NewRing(cfg.Auth.Nodes, cfg.Auth.HashReplicas)
	tokenCache := auth.NewTokenCache(redisClient, ring, time.Duration(cfg.Auth.TokenCacheTTLSeconds)*time.Second)

	api := app.Party("/api", AuthMiddleware(&cfg.JWT, tokenCache), RequireAdmin())

	// ---------- 商品管理 ----------

	api.Get("/products", func(ctx iris.Context) {
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()
		list, err := productSvc.ListAll(reqCtx)
		if err != nil {
			writeError(ctx, err)
			return
		}
		writeData(ctx, list)
	})

	api.Post("/products", func(ctx iris.Context) {
		var p product.Product
		if err := ctx.ReadJSON(&p); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()
		if err := productSvc.Create(reqCtx, &p); err != nil {
			writeError(ctx, err)
			return
		}
		writeData(ctx, p)
	})

	api.Put("/products/{id:int64}", func(ctx iris.Context) {
		pid, _ := ctx.Params().GetInt64("id")
		var p product.Product
		if err := ctx.ReadJSON(&p); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		p.ID = pid
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()
		if err := productSvc.Update(reqCtx, &p); err != nil {
			writeError(ctx, err)
			return
		}
		writeData(ctx, p)
	})

	api.Delete("/products/{id:int64}", func(ctx iris.Context) {
		pid, _ := ctx.Params().GetInt64("id")
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()
		if err := productSvc.Delete(reqCtx, pid); err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "deleted"})
	})

	// ---------- 订单管理 ----------

	api.Get("/orders", func(ctx iris.Context) {
		limit, _ := strconv.Atoi(ctx.URLParamDefault("limit", "20"))
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()
		list, err := orderSvc.ListRecent(reqCtx, limit)
		if err != nil {
			writeError(ctx, err)
			return
		}
		writeData(ctx, list)
	})

	api.Get("/orders/user/{userId:int64}", func(ctx iris.Context) {
		uid, _ := ctx.Params().GetInt64("userId")
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()
		list, err := orderSvc.ListByUser(reqCtx, uid)
		if err != nil {
			writeError(ctx, err)
			return
		}
		writeData(ctx, list)
	})

	api.Patch("/orders/{id:int64}/status", func(ctx iris.Context) {
		oid, _ := ctx.Params().GetInt64("id")
		var req struct {
			Status string `json:"status"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()
		o, err := orderSvc.UpdateStatus(reqCtx, oid, req.Status)
		if err != nil {
			writeError(ctx, err)
			return
		}
		writeData(ctx, o)
	})

	api.Patch("/orders/{id:int64}/payment-status", func(ctx iris.Context) {
		oid, _ := ctx.Params().GetInt64("id")
		var req struct {
			PaymentStatus string `json:"payment_status"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()
		o, err := orderSvc.UpdatePaymentStatus(reqCtx, oid, req.PaymentStatus)
		if err != nil {
			writeError(ctx, err)
			return
		}
		writeData(ctx, o)
	})

	api.Patch("/orders/{id:int64}/cancel", func(ctx iris.Context) {
		oid, _ := ctx.Params().GetInt64("id")
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()
		o, err := orderSvc.Cancel(reqCtx, oid)
		if err != nil {
			writeError(ctx, err)
			return
		}
		writeData(ctx, o)
	})

	// ---------- 客户管理 ----------

	api.Get("/clients", func(ctx iris.Context) {
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()
		list, err := clientSvc.ListAll(reqCtx)
		if err != nil {
			writeError(ctx, err)
			return
		}
		writeData(ctx, list)
	})

	api.Patch("/clients/{id:int64}/deactivate", func(ctx iris.Context) {
		cid, _ := ctx.Params().GetInt64("id")
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()
		c, err := clientSvc.SetActive(reqCtx, cid, false)
		if err != nil {
			writeError(ctx, err)
			return
		}
		writeData(ctx, c)
	})

	api.Patch("/clients/{id:int64}/activate", func(ctx iris.Context) {
		cid, _ := ctx.Params().GetInt64("id")
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), storeTimeout)
		defer cancel()
		c, err := clientSvc.SetActive(reqCtx, cid, true)
		if err != nil {
			writeError(ctx, err)
			return
		}
		writeData(ctx, c)
	})

	// ---------- 监控 ----------

	api.Get("/stats", func(ctx iris.Context) {
		writeData(ctx, service.GetMonitor().GetStats())
	})
}
