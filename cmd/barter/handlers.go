package main

import (
	"context"
	"net/http"
	"time"

	"barter/pkg/models"
	"barter/pkg/store"

	"github.com/gin-gonic/gin"
)

type dealResponse struct {
	*models.Deal
	OfferingCompanyEmail string `json:"offeringCompanyEmail,omitempty"`
	NeedingCompanyEmail  string `json:"needingCompanyEmail,omitempty"`
}

type contractResponse struct {
	ID                   uint       `json:"id"`
	DealID               uint       `json:"dealId"`
	DocName              string     `json:"docName"`
	DocPath              string     `json:"docPath"`
	StartDate            time.Time  `json:"startDate"`
	EndDate              *time.Time `json:"endDate,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	OfferingCompanyEmail string     `json:"offeringCompanyEmail,omitempty"`
	NeedingCompanyEmail  string     `json:"needingCompanyEmail,omitempty"`
}

func toDealResponse(d *models.Deal) dealResponse {
	return dealResponse{
		Deal:                 d,
		OfferingCompanyEmail: d.OfferingCompanyEmail(),
		NeedingCompanyEmail:  d.NeedingCompanyEmail(),
	}
}

func toDealResponses(deals []models.Deal) []dealResponse {
	out := make([]dealResponse, 0, len(deals))
	for i := range deals {
		out = append(out, toDealResponse(&deals[i]))
	}
	return out
}

func toContractResponse(c *models.Contract) contractResponse {
	return contractResponse{
		ID:                   c.ID,
		DealID:               c.DealID,
		DocName:              c.DocName,
		DocPath:              c.DocPath,
		StartDate:            c.StartDate,
		EndDate:              c.EndDate,
		CreatedAt:            c.CreatedAt,
		OfferingCompanyEmail: c.OfferingCompanyEmail(),
		NeedingCompanyEmail:  c.NeedingCompanyEmail(),
	}
}

// Companies

func createCompany(c *gin.Context) {
	var request struct {
		Username string `json:"username"`
		Industry string `json:"industry"`
		Email    string `json:"email"`
	}
	if !bindJSON(c, &request) {
		return
	}
	company := models.Company{Username: request.Username, Industry: request.Industry, Email: request.Email}
	if err := guarded(func() error { return st.CreateCompany(c.Request.Context(), &company) }); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, company)
}

func listCompanies(c *gin.Context) {
	page, ok := pageQuery(c)
	if !ok {
		return
	}
	var companies []models.Company
	err := guarded(func() (err error) {
		companies, err = st.ListCompanies(c.Request.Context(), page)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": companies})
}

func getCompany(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var company *models.Company
	err := guarded(func() (err error) {
		company, err = st.GetCompany(c.Request.Context(), id)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func updateCompany(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var request struct {
		Username *string `json:"username"`
		Industry *string `json:"industry"`
		Email    *string `json:"email"`
	}
	if !bindJSON(c, &request) {
		return
	}
	var company *models.Company
	err := guarded(func() (err error) {
		company, err = st.UpdateCompany(c.Request.Context(), id, store.CompanyUpdate{
			Username: request.Username,
			Industry: request.Industry,
			Email:    request.Email,
		})
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

// deleteCompany refuses while the company's services are in deals unless
// ?purge=true asks for those deals to go first.
func deleteCompany(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	purge, ok := boolQuery(c, "purge")
	if !ok {
		return
	}
	if purge != nil && *purge {
		var removed int64
		err := guarded(func() (err error) {
			removed, err = st.PurgeCompany(c.Request.Context(), id)
			return err
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"dealsRemoved": removed})
		return
	}
	if err := guarded(func() error { return st.DeleteCompany(c.Request.Context(), id) }); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func getCompanyServices(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var services []models.Service
	err := guarded(func() (err error) {
		services, err = st.CompanyServices(c.Request.Context(), id)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": services})
}

func getCompanyDeals(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var deals []models.Deal
	err := guarded(func() (err error) {
		deals, err = st.CompanyDeals(c.Request.Context(), id)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": toDealResponses(deals)})
}

func getReviewsWritten(c *gin.Context) {
	listCompanyReviews(c, st.ReviewsWritten)
}

func getReviewsReceived(c *gin.Context) {
	listCompanyReviews(c, st.ReviewsReceived)
}

func listCompanyReviews(c *gin.Context, list func(ctx context.Context, id uint) ([]models.Review, error)) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var reviews []models.Review
	err := guarded(func() (err error) {
		reviews, err = list(c.Request.Context(), id)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": reviews})
}

func getCompanyRating(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var summary store.RatingSummary
	err := guarded(func() (err error) {
		summary, err = st.CompanyRating(c.Request.Context(), id)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Services

func createService(c *gin.Context) {
	var request struct {
		CompanyID   uint    `json:"companyId"`
		OfferOrNeed *bool   `json:"offerOrNeed"`
		Title       string  `json:"title"`
		Description *string `json:"description"`
		Active      *bool   `json:"active"`
	}
	if !bindJSON(c, &request) {
		return
	}
	service := models.Service{
		CompanyID:   request.CompanyID,
		OfferOrNeed: request.OfferOrNeed,
		Title:       request.Title,
		Description: request.Description,
		Active:      request.Active,
	}
	if err := guarded(func() error { return st.CreateService(c.Request.Context(), &service) }); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, service)
}

func listServices(c *gin.Context) {
	companyID, ok := uintQuery(c, "companyId")
	if !ok {
		return
	}
	active, ok := boolQuery(c, "active")
	if !ok {
		return
	}
	page, ok := pageQuery(c)
	if !ok {
		return
	}
	filter := store.ServiceFilter{CompanyID: companyID, Active: active, Page: page}
	switch c.Query("kind") {
	case "":
	case "offer":
		filter.Offer = models.Bool(true)
	case "need":
		filter.Offer = models.Bool(false)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be offer or need"})
		return
	}

	var services []models.Service
	err := guarded(func() (err error) {
		services, err = st.ListServices(c.Request.Context(), filter)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": services})
}

func getService(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var service *models.Service
	err := guarded(func() (err error) {
		service, err = st.GetService(c.Request.Context(), id)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service)
}

func updateService(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var request struct {
		OfferOrNeed *bool   `json:"offerOrNeed"`
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Active      *bool   `json:"active"`
	}
	if !bindJSON(c, &request) {
		return
	}
	var service *models.Service
	err := guarded(func() (err error) {
		service, err = st.UpdateService(c.Request.Context(), id, store.ServiceUpdate{
			OfferOrNeed: request.OfferOrNeed,
			Title:       request.Title,
			Description: request.Description,
			Active:      request.Active,
		})
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service)
}

func deactivateService(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var service *models.Service
	err := guarded(func() (err error) {
		service, err = st.DeactivateService(c.Request.Context(), id)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service)
}

func deleteService(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := guarded(func() error { return st.DeleteService(c.Request.Context(), id) }); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// getServiceDeals accepts ?role=offered|needed; without it both roles are listed.
func getServiceDeals(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	list := st.ServiceDeals
	switch c.Query("role") {
	case "":
	case "offered":
		list = st.DealsOffered
	case "needed":
		list = st.DealsNeeded
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be offered or needed"})
		return
	}
	var deals []models.Deal
	err := guarded(func() (err error) {
		deals, err = list(c.Request.Context(), id)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": toDealResponses(deals)})
}

// Deals

func createDeal(c *gin.Context) {
	var request struct {
		ServiceOfferedID uint `json:"serviceOfferedId"`
		ServiceNeededID  uint `json:"serviceNeededId"`
	}
	if !bindJSON(c, &request) {
		return
	}
	deal := models.Deal{ServiceOfferedID: request.ServiceOfferedID, ServiceNeededID: request.ServiceNeededID}
	var created *models.Deal
	err := guarded(func() error {
		if err := st.CreateDeal(c.Request.Context(), &deal); err != nil {
			return err
		}
		var err error
		created, err = st.GetDeal(c.Request.Context(), deal.ID)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toDealResponse(created))
}

func listDeals(c *gin.Context) {
	page, ok := pageQuery(c)
	if !ok {
		return
	}
	var deals []models.Deal
	err := guarded(func() (err error) {
		deals, err = st.ListDeals(c.Request.Context(), page)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": toDealResponses(deals)})
}

func getDeal(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var deal *models.Deal
	err := guarded(func() (err error) {
		deal, err = st.GetDeal(c.Request.Context(), id)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDealResponse(deal))
}

func updateDeal(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var request struct {
		ServiceOfferedID *uint `json:"serviceOfferedId"`
		ServiceNeededID  *uint `json:"serviceNeededId"`
	}
	if !bindJSON(c, &request) {
		return
	}
	var deal *models.Deal
	err := guarded(func() (err error) {
		deal, err = st.UpdateDeal(c.Request.Context(), id, store.DealUpdate{
			ServiceOfferedID: request.ServiceOfferedID,
			ServiceNeededID:  request.ServiceNeededID,
		})
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDealResponse(deal))
}

func deleteDeal(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := guarded(func() error { return st.DeleteDeal(c.Request.Context(), id) }); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func getDealContracts(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var contracts []models.Contract
	err := guarded(func() (err error) {
		contracts, err = st.DealContracts(c.Request.Context(), id)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": contracts})
}

func getDealReviews(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var reviews []models.Review
	err := guarded(func() (err error) {
		reviews, err = st.DealReviews(c.Request.Context(), id)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": reviews})
}

// Contracts

func createContract(c *gin.Context) {
	var request struct {
		DealID    uint       `json:"dealId"`
		DocName   string     `json:"docName"`
		DocPath   string     `json:"docPath"`
		StartDate *time.Time `json:"startDate"`
		EndDate   *time.Time `json:"endDate"`
	}
	if !bindJSON(c, &request) {
		return
	}
	contract := models.Contract{
		DealID:  request.DealID,
		DocName: request.DocName,
		DocPath: request.DocPath,
		EndDate: request.EndDate,
	}
	if request.StartDate != nil {
		contract.StartDate = *request.StartDate
	}
	var created *models.Contract
	err := guarded(func() error {
		if err := st.CreateContract(c.Request.Context(), &contract); err != nil {
			return err
		}
		var err error
		created, err = st.GetContract(c.Request.Context(), contract.ID)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toContractResponse(created))
}

func getContract(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var contract *models.Contract
	err := guarded(func() (err error) {
		contract, err = st.GetContract(c.Request.Context(), id)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(contract))
}

func updateContract(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var request struct {
		DocName   *string    `json:"docName"`
		DocPath   *string    `json:"docPath"`
		StartDate *time.Time `json:"startDate"`
		EndDate   *time.Time `json:"endDate"`
		OpenEnded bool       `json:"openEnded"`
	}
	if !bindJSON(c, &request) {
		return
	}
	var contract *models.Contract
	err := guarded(func() error {
		_, err := st.UpdateContract(c.Request.Context(), id, store.ContractUpdate{
			DocName:   request.DocName,
			DocPath:   request.DocPath,
			StartDate: request.StartDate,
			EndDate:   request.EndDate,
			OpenEnded: request.OpenEnded,
		})
		if err != nil {
			return err
		}
		contract, err = st.GetContract(c.Request.Context(), id)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(contract))
}

func deleteContract(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := guarded(func() error { return st.DeleteContract(c.Request.Context(), id) }); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reviews

func createReview(c *gin.Context) {
	var request struct {
		DealID     *uint   `json:"dealId"`
		ReviewerID *uint   `json:"reviewerId"`
		RevieweeID uint    `json:"revieweeId"`
		Rating     int     `json:"rating"`
		Comment    *string `json:"comment"`
	}
	if !bindJSON(c, &request) {
		return
	}
	review := models.Review{
		DealID:     request.DealID,
		ReviewerID: request.ReviewerID,
		RevieweeID: request.RevieweeID,
		Rating:     request.Rating,
		Comment:    request.Comment,
	}
	if err := guarded(func() error { return st.CreateReview(c.Request.Context(), &review) }); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func getReview(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var review *models.Review
	err := guarded(func() (err error) {
		review, err = st.GetReview(c.Request.Context(), id)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func updateReview(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var request struct {
		Rating  *int    `json:"rating"`
		Comment *string `json:"comment"`
	}
	if !bindJSON(c, &request) {
		return
	}
	var review *models.Review
	err := guarded(func() (err error) {
		review, err = st.UpdateReview(c.Request.Context(), id, store.ReviewUpdate{Rating: request.Rating, Comment: request.Comment})
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func deleteReview(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := guarded(func() error { return st.DeleteReview(c.Request.Context(), id) }); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
