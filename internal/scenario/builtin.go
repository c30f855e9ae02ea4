package scenario

// Built-in suite for the fleet-management application. Locator values and
// expected strings are the external contract with the application under test;
// the XPath paths track its current DOM layout. Credentials and the entry URL
// come in through ${...} placeholders resolved at run time.

// Login form and navigation controls shared across scenarios.
const (
	locLoginEmail    = "html/body/div[2]/div[2]/div[3]/div/form/div/input"
	locLoginPassword = "html/body/div[2]/div[2]/div[3]/div/form/div[2]/input"
	locLoginSubmit   = "html/body/div[2]/div[2]/div[3]/div/form/button"
	locSignOut       = "html/body/div[2]/nav/div[2]/div/div[2]/div[2]/button"
	locDashboardLink = "html/body/div[2]/nav/div[2]/div/div/div/a"
)

func xp(value string) Locator   { return Locator{Kind: ByXPath, Value: value} }
func text(value string) Locator { return Locator{Kind: ByText, Value: value} }

func navigate(url string) Step {
	return Step{Kind: StepNavigate, Text: url, Note: "open entry page"}
}

func waitLoad() Step {
	return Step{Kind: StepWaitForLoad, BestEffort: true, Note: "wait for frames to load"}
}

func fill(loc Locator, value, note string) Step {
	return Step{Kind: StepFill, Locator: loc, Text: value, Note: note}
}

func click(loc Locator, note string) Step {
	return Step{Kind: StepClick, Locator: loc, Note: note}
}

func assertText(value string) Step {
	return Step{Kind: StepAssertVisible, Locator: text(value), TimeoutMS: 30000, Note: "expect " + value}
}

// signIn is the login sequence used by every scenario; role picks the
// credential pair.
func signIn(role string) []Step {
	return []Step{
		fill(xp(locLoginEmail), "${"+role+".email}", "enter "+role+" email"),
		fill(xp(locLoginPassword), "${"+role+".password}", "enter "+role+" password"),
		click(xp(locLoginSubmit), "submit login form"),
	}
}

func steps(groups ...[]Step) []Step {
	var out []Step
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// BuiltinSuite returns the fleet-management scenario suite.
func BuiltinSuite() []Scenario {
	return []Scenario{
		{
			ID:          "auth-employee-login",
			Name:        "Authentication success with valid employee credentials",
			Description: "Sign in with the employee account and verify dashboard access is granted.",
			EntryURL:    "${base_url}",
			Diagnostic:  "Test case failed: Employee authentication using Supabase Auth did not succeed or dashboard with appropriate permissions was not displayed as expected.",
			Steps: steps(
				[]Step{navigate("${base_url}"), waitLoad(), click(xp(locDashboardLink), "open dashboard")},
				signIn("employee"),
				[]Step{
					click(xp("html/body/div[2]/div[4]/main/div/div[2]/div/div"), "open delivery note module"),
					click(xp("html/body/div[2]/div[4]/main/div/div[2]/div/div[2]"), "open site diary module"),
					click(xp("html/body/div[2]/div[4]/main/div/div[2]/div/div[3]"), "open plant hire module"),
					assertText("Employee Dashboard Access Granted"),
				},
			),
		},
		{
			ID:          "workshop-task-taxonomy",
			Name:        "Workshop task creation with two-tier taxonomy",
			Description: "Create a workshop task with category and subcategory and verify the badges.",
			EntryURL:    "${base_url}",
			Diagnostic:  "Test case failed: The test plan execution failed to create a new workshop task with correct category and subcategory badges, colors, and icons as expected.",
			Steps: steps(
				[]Step{navigate("${base_url}"), waitLoad(), click(xp(locSignOut), "sign out current user")},
				signIn("employee"),
				[]Step{
					click(text("Workshop Tasks"), "open workshop tasks page"),
					click(text("New Task"), "open task creation form"),
					click(text("Select vehicle"), "open vehicle dropdown"),
					click(text("BG21 EXH"), "pick vehicle BG21 EXH"),
					click(text("Select category"), "open category dropdown"),
					click(text("Repair"), "pick Repair category"),
					click(text("Select subcategory"), "open subcategory dropdown"),
					click(text("Electrical"), "pick Electrical subcategory"),
					fill(text("Current mileage"), "12345", "enter current mileage"),
					fill(text("Task details"), "Electrical system requires inspection and repair.", "enter task details"),
					click(text("Create Task"), "submit new workshop task"),
					assertText("Nonexistent Category Badge"),
				},
			),
		},
		{
			ID:          "workshop-comment-crud",
			Name:        "Workshop task comments timeline CRUD for author",
			Description: "Add a comment to the first pending workshop task and verify the timeline.",
			EntryURL:    "${base_url}",
			Diagnostic:  "Test case failed: The test plan execution for adding, editing, and deleting comments on a workshop task timeline did not complete successfully. The comment was not found with correct author and timestamp, or the edit/delete operations did not reflect properly.",
			Steps: steps(
				[]Step{navigate("${base_url}"), waitLoad(), click(xp(locSignOut), "sign out current user")},
				signIn("employee"),
				[]Step{
					click(text("Workshop"), "open workshop tab"),
					click(xp("html/body/div[2]/div[4]/main/div/div[2]/div[2]/div[3]/div/div/div/div/div/div/div/div[2]/button"), "open comments for first pending task"),
					fill(xp("html/body/div[5]/div[3]/textarea"), "This is a test comment.", "enter a comment"),
					click(xp("html/body/div[5]/div[3]/div/button"), "submit comment"),
					click(text("Close"), "close comments dialog"),
					assertText("Comment Added Successfully"),
				},
			),
		},
		{
			ID:          "fleet-tab-navigation",
			Name:        "Fleet page tab navigation and data loading",
			Description: "Navigate the fleet page tabs as manager and verify each tab's data renders.",
			EntryURL:    "${base_url}",
			Diagnostic:  "Test case failed: Fleet page tabs did not load their data or role-restricted tabs were not enforced as expected.",
			Steps: steps(
				[]Step{navigate("${base_url}"), waitLoad(), click(xp(locSignOut), "sign out current user")},
				signIn("manager"),
				[]Step{
					click(text("Fleet"), "open fleet tab"),
					click(text("Vehicles"), "open vehicles tab"),
					click(text("Categories"), "open categories tab"),
					click(text("Settings"), "open settings tab"),
					assertText("Maintenance"),
					assertText("Vehicles"),
					assertText("Categories"),
					assertText("Settings"),
				},
			),
		},
		{
			ID:          "vehicle-inspection-submission",
			Name:        "Digital vehicle inspection form defect submission and PDF export",
			Description: "Create a new vehicle inspection for BG21 EXH and verify the submission banner.",
			EntryURL:    "${base_url}",
			Diagnostic:  "Test case failed: The vehicle inspection form submission, compliance report generation, or PDF export did not complete successfully as per the test plan.",
			Steps: steps(
				[]Step{navigate("${base_url}"), waitLoad(), click(xp(locSignOut), "sign out current user")},
				signIn("employee"),
				[]Step{
					click(text("Vehicle Inspections"), "open vehicle inspections tile"),
					click(text("Inspections"), "open inspections page"),
					click(text("New Inspection"), "start a new inspection form"),
					click(text("Select a vehicle"), "open vehicle dropdown"),
					click(text("BG21 EXH - Van"), "pick vehicle BG21 EXH - Van"),
					click(text("Week Ending (Sunday)"), "activate week-ending date input"),
					assertText("Vehicle Inspection Submission Successful"),
				},
			),
		},
		{
			ID:          "rams-signature-workflow",
			Name:        "RAMS digital signature workflow with export and email",
			Description: "Upload a RAMS document as manager and verify the signature workflow.",
			EntryURL:    "${base_url}",
			Diagnostic:  "Test case failed: RAMS document upload, digital signature capture, PDF export, or email distribution did not complete successfully.",
			Steps: steps(
				[]Step{navigate("${base_url}"), waitLoad(), click(xp(locSignOut), "sign out current user")},
				signIn("manager"),
				[]Step{
					click(text("RAMS"), "open RAMS tab"),
					click(text("Manage RAMS"), "open RAMS management"),
					click(text("Upload RAMS"), "start RAMS upload"),
					fill(text("Document Title"), "Test RAMS Document for Digital Signature", "enter document title"),
					fill(text("Description"), "This is a test RAMS document to verify digital signature, visitor acknowledgments, PDF export, and email distribution features.", "enter description"),
					click(text("Upload Document"), "submit new RAMS entry"),
					assertText("Digital Signature Verified Successfully"),
				},
			),
		},
		{
			ID:          "migration-legacy-comments",
			Name:        "Database migration script execution without data loss",
			Description: "Verify migrated legacy comments display and remain writable on a pending task.",
			EntryURL:    "${base_url}",
			Diagnostic:  "Test case failed: Legacy workshop task comments were not preserved by the migration or new comments could not be added afterwards.",
			Steps: steps(
				[]Step{navigate("${base_url}"), waitLoad(), click(xp(locDashboardLink), "open dashboard")},
				signIn("manager"),
				[]Step{
					click(text("Workshop Tasks"), "open workshop tasks"),
					click(xp("html/body/div[2]/div[4]/main/div/div[2]/div[2]/div[3]/div/div/div/div/div/div/div/div[2]/button"), "open comments for first pending task"),
					fill(xp("html/body/div[5]/div[3]/textarea"), "Test comment for migration verification.", "enter migration check comment"),
					click(text("Add Note"), "save the new comment"),
					assertText("Migration Completed Successfully"),
				},
			),
		},
		{
			ID:          "comment-minimum-length",
			Name:        "Input validation on workshop task comments minimum length",
			Description: "Comments under 10 characters must be rejected; valid comments must persist.",
			EntryURL:    "${base_url}",
			Diagnostic:  "Test case failed: Comment minimum-length validation did not behave as expected: a short comment was persisted or a valid comment was rejected.",
			Steps: steps(
				[]Step{navigate("${base_url}"), waitLoad(), click(xp(locDashboardLink), "open dashboard")},
				signIn("employee"),
				[]Step{
					click(text("Workshop"), "open workshop module"),
					click(xp("html/body/div[2]/div[4]/main/div/div[2]/div[2]/div[3]/div/div/div/div/div/div/div/div[2]/button"), "open comments for first pending task"),
					fill(xp("html/body/div[5]/div[3]/textarea"), "Too short", "enter a comment under 10 characters"),
					fill(xp("html/body/div[5]/div[3]/textarea"), "Valid text", "replace with a 10 character comment"),
					click(xp("html/body/div[5]/div[3]/div/button"), "submit the valid comment"),
					fill(xp("html/body/div[5]/div[3]/textarea"), "This is a longer comment with more than 10 characters.", "enter a longer comment"),
					click(xp("html/body/div[5]/div[3]/div/button"), "submit the longer comment"),
					assertText("Electrical system requires inspection and repair."),
					assertText("Big crack in windscreen"),
					assertText("Windscreen before MOT unless unsafe"),
					assertText("Do windscreen before MOT"),
					assertText("No comments yet. Add the first note."),
				},
			),
		},
		{
			ID:          "error-logging-capture",
			Name:        "Centralized error logging captures exceptions and reports",
			Description: "Trigger an application error and verify it surfaces in the debug console.",
			EntryURL:    "${base_url}",
			Diagnostic:  "Test case failed: The test plan execution has failed because the intentional application error was not recorded in centralized logging or surfaced in the monitoring UI.",
			Steps: steps(
				[]Step{navigate("${base_url}"), waitLoad(), click(xp(locSignOut), "sign out current user")},
				signIn("manager"),
				[]Step{
					click(text("Debug Console"), "open debug console tab"),
					click(text("Clear Filters"), "clear log filters"),
					assertText("No Errors Detected in Logs"),
				},
			),
		},
	}
}
