package controllers

import (
	"errors"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/Aleksandergreg/storefront/app/services"
	"github.com/Aleksandergreg/storefront/app/stores"
	gql "github.com/Aleksandergreg/storefront/pkg/graphql"
	"github.com/Aleksandergreg/storefront/pkg/middleware"
	"github.com/Aleksandergreg/storefront/pkg/response"
)

// GraphQLController exposes a read-only query surface over the state layer.
// Mutations stay on the REST endpoints where validation lives.
type GraphQLController struct {
	schema graphql.Schema
}

func NewGraphQLController(cart *stores.CartStore, orders *stores.OrderStore, wishlist *stores.WishlistStore, catalog *services.CatalogService) (*GraphQLController, error) {
	orderItemType := graphql.NewObject(graphql.ObjectConfig{
		Name: "OrderItem",
		Fields: graphql.Fields{
			"name":     &graphql.Field{Type: graphql.String},
			"quantity": &graphql.Field{Type: graphql.Int},
			"price":    &graphql.Field{Type: graphql.Float},
		},
	})

	orderType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Order",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"date":       &graphql.Field{Type: graphql.String},
			"created_at": &graphql.Field{Type: graphql.Float},
			"total":      &graphql.Field{Type: graphql.Float},
			"items":      &graphql.Field{Type: graphql.NewList(orderItemType)},
		},
	})

	wishlistItemType := graphql.NewObject(graphql.ObjectConfig{
		Name: "WishlistItem",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.String},
			"name":      &graphql.Field{Type: graphql.String},
			"price":     &graphql.Field{Type: graphql.Float},
			"thumbnail": &graphql.Field{Type: graphql.String},
			"added_at":  &graphql.Field{Type: graphql.Float},
		},
	})

	cartItemType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CartItem",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.String},
			"name":      &graphql.Field{Type: graphql.String},
			"price":     &graphql.Field{Type: graphql.Float},
			"quantity":  &graphql.Field{Type: graphql.Int},
			"thumbnail": &graphql.Field{Type: graphql.String},
		},
	})

	cartType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Cart",
		Fields: graphql.Fields{
			"items": &graphql.Field{Type: graphql.NewList(cartItemType)},
			"total": &graphql.Field{Type: graphql.Float},
		},
	})

	productPriceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ProductPrice",
		Fields: graphql.Fields{
			"amount":        &graphql.Field{Type: graphql.Int},
			"currency_code": &graphql.Field{Type: graphql.String},
		},
	})

	productVariantType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ProductVariant",
		Fields: graphql.Fields{
			"id":     &graphql.Field{Type: graphql.String},
			"title":  &graphql.Field{Type: graphql.String},
			"prices": &graphql.Field{Type: graphql.NewList(productPriceType)},
		},
	})

	productType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"title":       &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"thumbnail":   &graphql.Field{Type: graphql.String},
			"variants":    &graphql.Field{Type: graphql.NewList(productVariantType)},
		},
	})

	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name: "RootQuery",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int},
					"q":      &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if catalog == nil {
						return nil, errors.New("catalog is not configured")
					}
					limit, _ := p.Args["limit"].(int)
					offset, _ := p.Args["offset"].(int)
					q, _ := p.Args["q"].(string)
					products, _, err := catalog.ListProducts(p.Context, limit, offset, q)
					return products, err
				},
			},
			"orders": &graphql.Field{
				Type: graphql.NewList(orderType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					owner := middleware.OwnerFromCtx(p.Context)
					return orders.Orders(p.Context, owner)
				},
			},
			"ordersVersion": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return int(orders.Version(middleware.OwnerFromCtx(p.Context))), nil
				},
			},
			"wishlist": &graphql.Field{
				Type: graphql.NewList(wishlistItemType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					owner := middleware.OwnerFromCtx(p.Context)
					return wishlist.Items(p.Context, owner)
				},
			},
			"cart": &graphql.Field{
				Type: cartType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					owner := middleware.OwnerFromCtx(p.Context)
					c, err := cart.Get(p.Context, owner)
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"items": c.Items,
						"total": c.Total(),
					}, nil
				},
			},
		},
	})

	schema, err := gql.NewSchema(rootQuery)
	if err != nil {
		return nil, err
	}
	return &GraphQLController{schema: schema}, nil
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func (c *GraphQLController) Query(w http.ResponseWriter, r *http.Request) {
	var body graphqlRequest
	if !decode(w, r, &body) {
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         c.schema,
		RequestString:  body.Query,
		VariableValues: body.Variables,
		Context:        r.Context(),
	})
	response.Success(w, result)
}
