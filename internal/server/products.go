package server

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	productdomain "github.com/varejotech/balcao/internal/product/domain"
	"github.com/varejotech/balcao/internal/providers/storage"
)

const signedImageTTL = 15 * time.Minute

func (s *Server) ListProducts(c *gin.Context) {
	var filter productdomain.ListFilter
	if err := c.ShouldBindQuery(&filter.Pagination); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	filter.Search = c.Query("q")
	filter.Category = c.Query("category")
	filter.LowStock = c.Query("low_stock") == "true"

	claims := s.claims(c)
	products, pageInfo, err := s.productSvc.List(c.Request.Context(), claims.TenantID, filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"products":  s.withImageURLs(products),
		"page_info": pageInfo,
	})
}

// ListAllProducts serves the offline cache sync: the client replaces its
// local catalog with this response wholesale.
func (s *Server) ListAllProducts(c *gin.Context) {
	claims := s.claims(c)
	products, err := s.productSvc.ListAll(c.Request.Context(), claims.TenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": s.withImageURLs(products)})
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req productdomain.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	claims := s.claims(c)
	product, err := s.productSvc.Create(c.Request.Context(), claims.TenantID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (s *Server) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	claims := s.claims(c)
	product, err := s.productSvc.Get(c.Request.Context(), claims.TenantID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req productdomain.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	claims := s.claims(c)
	product, err := s.productSvc.Update(c.Request.Context(), claims.TenantID, id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	claims := s.claims(c)
	if err := s.productSvc.Delete(c.Request.Context(), claims.TenantID, id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) UploadProductImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	claims := s.claims(c)
	product, err := s.productSvc.Get(c.Request.Context(), claims.TenantID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(path.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	key := fmt.Sprintf("products/%s/%s%s", claims.TenantID.String(), product.ID.String(), ext)
	if _, err := s.store.Upload(c.Request.Context(), key, file); err != nil {
		AbortWithError(c, err)
		return
	}

	updated, err := s.productSvc.Update(c.Request.Context(), claims.TenantID, id, productdomain.UpsertRequest{
		SKU:         product.SKU,
		Name:        product.Name,
		Description: product.Description,
		Category:    product.Category,
		SalePrice:   product.SalePrice,
		CostPrice:   product.CostPrice,
		MinStock:    product.MinStock,
		ImageKey:    key,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

type productWithImage struct {
	*productdomain.Product
	ImageURL string `json:"imageUrl,omitempty"`
}

func (s *Server) withImageURLs(products []*productdomain.Product) []productWithImage {
	out := make([]productWithImage, 0, len(products))
	for _, product := range products {
		entry := productWithImage{Product: product}
		if product.ImageKey != "" {
			if url, err := s.store.SignedURL(product.ImageKey, signedImageTTL); err == nil {
				entry.ImageURL = url
			}
		}
		out = append(out, entry)
	}
	return out
}

// ServeFile delivers a stored object after checking the signed URL.
func (s *Server) ServeFile(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if err := s.store.VerifySignature(key, c.Query("expires"), c.Query("sig")); err != nil {
		AbortWithError(c, ErrForbidden)
		return
	}

	f, err := s.store.Open(key)
	if err != nil {
		AbortWithError(c, storage.ErrInvalidKey)
		return
	}
	defer f.Close()

	c.Status(http.StatusOK)
	c.Header("Cache-Control", "private, max-age=900")
	_, _ = io.Copy(c.Writer, f)
}
